package core

// ReportLevel is the severity of a message shown to the user.
type ReportLevel uint8

const (
	REPORT_INFO ReportLevel = iota
	REPORT_WARNING
	REPORT_ERROR
)

func (l ReportLevel) String() string {
	switch l {
	case REPORT_WARNING:
		return "WARNING"
	case REPORT_ERROR:
		return "ERROR"
	default:
		return "INFO"
	}
}
