package global

var (
	Hostname string // stamped on mirrored events
	PID      int    // this process

	// Requested diagnostic detail, setting the bar events must clear to print
	//
	//	0 - None: errors only
	//	1 - Standard: lifecycle progress
	//	2 - Progress: per component progress
	//	3 - Data: summaries of data moving through the pipeline
	//	4 - FullData: complete line and record contents
	//	5 - Debug: extra processing detail (raw bytes)
	Verbosity int
)
