package chunker

import (
	"github.com/pkoukk/tiktoken-go"
)

// encodingName is the BPE encoding used by the OpenAI embedding models.
const encodingName = "cl100k_base"

// Tiktoken is the production Tokenizer backed by the cl100k_base BPE.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the cl100k_base encoding.
func NewTiktoken() (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *Tiktoken) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
