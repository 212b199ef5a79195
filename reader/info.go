package reader

import "time"

// Info holds the entries of the document information dictionary.
type Info struct {
	Producer     string
	Creator      string
	Author       string
	Title        string
	Subject      string
	Keywords     string
	CreationDate time.Time // zero when absent or unparseable
}
