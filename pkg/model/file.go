package model

// Payload is a named message read from disk, stdin or a request body.
type Payload struct {
	Name    string
	Content []byte
}
