package keywordmodel

// RawKeyword is the pre-normalization output of a single extractor (RAKE,
// TF-IDF, NER, ...). Extractors themselves are out of scope (spec.md §1);
// this is the contract they must return.
type RawKeyword struct {
	Text      string
	Score     float64
	Source    string // extractor name
	Frequency int
	Positions []int // character or token offsets where the term occurred
	Metadata  map[string]interface{}
}
