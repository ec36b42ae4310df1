package response

type writerState string

const (
	stateStatusLine writerState = "status line"
	stateHeaders    writerState = "headers"
	stateBody       writerState = "body"
	stateDone       writerState = "done"
)

func (ws writerState) advance() writerState {
	switch ws {
	case stateStatusLine:
		return stateHeaders
	case stateHeaders:
		return stateBody
	case stateBody:
		return stateDone
	default:
		panic("invalid writer state advance: " + ws)
	}
}
