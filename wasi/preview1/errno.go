package preview1

// Errno is a preview1 error number.
type Errno uint32

const (
	ErrnoSuccess Errno = 0
	ErrnoBadf    Errno = 8
	ErrnoFault   Errno = 21
	ErrnoInval   Errno = 28
	ErrnoIo      Errno = 29
)

func (e Errno) String() string {
	switch e {
	case ErrnoSuccess:
		return "success"
	case ErrnoBadf:
		return "badf"
	case ErrnoFault:
		return "fault"
	case ErrnoInval:
		return "inval"
	case ErrnoIo:
		return "io"
	}
	return "errno"
}
