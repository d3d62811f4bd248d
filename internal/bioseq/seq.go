// Package bioseq provides the biological sequence wrapper carried in
// sim-data snapshots. A Seq is a traversal leaf compared by exact equality.
package bioseq

import "fmt"

type Seq struct {
	Data string
}

func New(data string) Seq {
	return Seq{Data: data}
}

func (s Seq) Len() int {
	return len(s.Data)
}

func (s Seq) String() string {
	return fmt.Sprintf("Seq(%q)", s.Data)
}

// Complement returns the DNA complement, preserving unknown letters.
func (s Seq) Complement() Seq {
	out := make([]byte, len(s.Data))
	for i := 0; i < len(s.Data); i++ {
		switch s.Data[i] {
		case 'A':
			out[i] = 'T'
		case 'T':
			out[i] = 'A'
		case 'G':
			out[i] = 'C'
		case 'C':
			out[i] = 'G'
		default:
			out[i] = s.Data[i]
		}
	}
	return Seq{Data: string(out)}
}

// Transcribe rewrites a DNA coding sequence as RNA.
func (s Seq) Transcribe() Seq {
	out := make([]byte, len(s.Data))
	for i := 0; i < len(s.Data); i++ {
		if s.Data[i] == 'T' {
			out[i] = 'U'
		} else {
			out[i] = s.Data[i]
		}
	}
	return Seq{Data: string(out)}
}
