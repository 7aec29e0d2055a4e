package constants

// RequestState is a step of handling one user utterance.
type RequestState string

const (
	StateIdle         RequestState = "IDLE"
	StateGateChecking RequestState = "GATE_CHECKING"
	StateDocsLookup   RequestState = "DOCS_LOOKUP" // off-topic path
	StatePrompting    RequestState = "PROMPTING"
	StateModelCall    RequestState = "MODEL_CALL" // only suspension point
	StateExtracting   RequestState = "EXTRACTING"
	StateReconciling  RequestState = "RECONCILING"
	StateMerging      RequestState = "MERGING"
)
