package card

//go:generate stringer -type=StatusCode

// StatusCode mirrors the MFRC522 reader status set so log lines stay
// comparable with the firmware the gate replaces.
type StatusCode byte

const (
	StatusOK            StatusCode = iota // success
	StatusError                           // communication error
	StatusCollision                       // more than one card in the field
	StatusTimeout                         // card stopped answering, likely withdrawn
	StatusNoRoom                          // internal buffer too small
	StatusInternalError                   // reader firmware fault
	StatusInvalid                         // invalid argument
	StatusCRCWrong                        // block checksum mismatch
	StatusMifareNack    StatusCode = 0xFF // card rejected the command
)
