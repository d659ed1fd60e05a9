package coro

// An ID identifies a coroutine within the engine that created it.
//
// IDs are small non-negative integers handed out lowest-first.
// An ID stays valid until the coroutine is destroyed; afterwards the same
// value may denote another coroutine.
type ID int

// NoID is returned by Create when no coroutine was created.
const NoID ID = -1

// State is the lifecycle state of a coroutine.
type State uint8

const (
	Init      State = iota // Created but never resumed.
	Running                // Inside the dynamic extent of a Resume call.
	Suspended              // Yielded; waiting to be resumed.
	Finished               // Ran to completion.
)

func (s State) String() string {
	switch s {
	case Init:
		return "Init"
	case Running:
		return "Running"
	case Suspended:
		return "Suspended"
	case Finished:
		return "Finished"
	}
	return "State(?)"
}

// Status is what a Resume call reports when it returns without an error.
type Status int

const (
	Yielded Status = iota // The coroutine suspended itself.
	Ended                 // The coroutine is Finished.
)

func (s Status) String() string {
	if s == Ended {
		return "Ended"
	}
	return "Yielded"
}

// ResultCode maps the results of a Resume call onto the numeric contract
// 0 (yielded), 1 (finished) and -1 (error).
func ResultCode(s Status, err error) int {
	if err != nil {
		return -1
	}
	return int(s)
}
