package subtitle

// Comparison reports how closely a translation kept the source structure.
type Comparison struct {
	SourceBlocks     int `json:"source_blocks"`
	TranslatedBlocks int `json:"translated_blocks"`
	// TimestampMismatches holds the source block indexes whose timing differs
	// from the block at the same position in the translation.
	TimestampMismatches []int `json:"timestamp_mismatches,omitempty"`
}

// Matches reports equal block counts and identical timings.
func (c Comparison) Matches() bool {
	return c.SourceBlocks == c.TranslatedBlocks && len(c.TimestampMismatches) == 0
}

// Compare parses both documents and pairs blocks by position.
func Compare(source, translated string) Comparison {
	src := Parse(source)
	dst := Parse(translated)

	c := Comparison{SourceBlocks: len(src), TranslatedBlocks: len(dst)}
	for i := 0; i < len(src) && i < len(dst); i++ {
		if src[i].Start != dst[i].Start || src[i].End != dst[i].End {
			c.TimestampMismatches = append(c.TimestampMismatches, src[i].Index)
		}
	}
	return c
}
