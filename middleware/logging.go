package middleware

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/shravanasati/beacon/request"
	"github.com/shravanasati/beacon/response"
	"github.com/shravanasati/beacon/router"
	"github.com/shravanasati/beacon/server"
)

// Logging logs every request as a structured entry.
func Logging(logger *zap.Logger) router.Middleware {
	return func(next server.Handler) server.Handler {
		return func(r *request.Request) response.Response {
			now := time.Now()
			resp := next(r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("target", r.Target),
				zap.Int("status", int(resp.StatusCode())),
				zap.Duration("elapsed", time.Since(now)),
			)
			return resp
		}
	}
}

// LoggingColored logs every request as a single styled line, meant for a
// console encoder on a terminal. Colors follow the profile lipgloss detects
// on stdout, so pair it with a logger writing to the same terminal.
func LoggingColored(logger *zap.Logger) router.Middleware {
	methodStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true).Background(lipgloss.Color("12")).Width(8).Align(lipgloss.Center)

	return func(next server.Handler) server.Handler {
		return func(r *request.Request) response.Response {
			now := time.Now()
			resp := next(r)

			statusCode := int(resp.StatusCode())
			styledStatus := getStatusCodeStyle(statusCode).Render(fmt.Sprintf("%d", statusCode))
			styledMethod := methodStyle.Render(r.Method)

			logger.Info(fmt.Sprintf("%s %s %s in %s", styledMethod, r.Target, styledStatus, time.Since(now)))
			return resp
		}
	}
}

func getStatusCodeStyle(statusCode int) lipgloss.Style {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	case statusCode >= 300 && statusCode < 400:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	case statusCode >= 400 && statusCode < 500:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	case statusCode >= 500:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	}
}
