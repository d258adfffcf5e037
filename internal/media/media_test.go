package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		formats  []string
		expected Type
	}{
		{"kindle", []string{"Kindle Book"}, Ebook},
		{"overdrive read", []string{"OverDrive Read"}, Ebook},
		{"kobo", []string{"Kobo eBook"}, Ebook},
		{"epub", []string{"EPUB eBook"}, Ebook},
		{"audiobook mp3", []string{"Audiobook MP3"}, Audiobook},
		{"audiobook precedence", []string{"Audiobook (via OverDrive Read)"}, Audiobook},
		{"audiobook anywhere in list", []string{"Kindle Book", "OverDrive Listen audiobook"}, Audiobook},
		{"case insensitive", []string{"AUDIOBOOK"}, Audiobook},
		{"pdf", []string{"PDF"}, Unknown},
		{"empty", nil, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.formats))
		})
	}
}

func TestDistinct(t *testing.T) {
	tests := []struct {
		name     string
		formats  []string
		expected []Type
	}{
		{"no formats", nil, []Type{Unknown}},
		{"single ebook", []string{"Kindle Book"}, []Type{Ebook}},
		{"ebook variants collapse", []string{"Kindle Book", "OverDrive Read", "EPUB eBook"}, []Type{Ebook}},
		{"mixed keeps output order", []string{"OverDrive Listen audiobook", "PDF", "Kindle Book"}, []Type{Ebook, Audiobook, Unknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Distinct(tt.formats))
		})
	}
}
