package handlers

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/shravanasati/beacon/request"
	"github.com/shravanasati/beacon/response"
	"github.com/shravanasati/beacon/server"
)

const WhoamiPath = "/whoami"

// BuildInfo identifies the binary. The entry point fills it from values
// set with -ldflags at build time; unset values stay empty.
type BuildInfo struct {
	AppVersion string
	GitCommit  string
	BuildDate  string
}

// GoRuntime describes the Go runtime the process runs on.
type GoRuntime struct {
	Arch         string `json:"arch"`
	OS           string `json:"os"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_go_routine"`
	Version      string `json:"version"`
	Compiler     string `json:"compiler"`
}

// Identity is the process description served on /whoami. It is captured
// once at startup.
type Identity struct {
	Hostname   string            `json:"hostname"`
	AppVersion string            `json:"app_version"`
	GitCommit  string            `json:"git_commit"`
	BuildDate  string            `json:"build_date"`
	Go         GoRuntime         `json:"go"`
	UID        int               `json:"uid"`
	GID        int               `json:"gid"`
	PID        int               `json:"pid"`
	ExtraEnvs  map[string]string `json:"extra_envs"`
}

// ExtraEnvsVar names a comma separated list of environment variables whose
// values are reported under extra_envs.
const ExtraEnvsVar = "EXTRA_ENVS"

func extraEnvs() map[string]string {
	envs := map[string]string{}
	for name := range strings.SplitSeq(os.Getenv(ExtraEnvsVar), ",") {
		if name = strings.TrimSpace(name); name != "" {
			envs[name] = os.Getenv(name)
		}
	}
	return envs
}

// NewIdentity describes the current process.
func NewIdentity(build BuildInfo) (Identity, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return Identity{}, fmt.Errorf("read hostname: %w", err)
	}

	return Identity{
		Hostname:   hostname,
		AppVersion: build.AppVersion,
		GitCommit:  build.GitCommit,
		BuildDate:  build.BuildDate,
		Go: GoRuntime{
			Arch:         runtime.GOARCH,
			OS:           runtime.GOOS,
			NumCPU:       runtime.NumCPU(),
			NumGoroutine: runtime.NumGoroutine(),
			Version:      runtime.Version(),
			Compiler:     runtime.Compiler,
		},
		UID:       os.Getuid(),
		GID:       os.Getgid(),
		PID:       os.Getpid(),
		ExtraEnvs: extraEnvs(),
	}, nil
}

// Whoami serves id as JSON. The body is encoded once, so every request
// gets the same bytes.
func Whoami(id Identity) server.Handler {
	resp, err := response.JSON(response.StatusOK, id)
	if err != nil {
		resp = response.StatusText(response.StatusInternalServerError)
	}
	return func(*request.Request) response.Response {
		return resp
	}
}
