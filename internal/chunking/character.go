package chunking

// ChunkCharacters splits text into fixed-size windows that advance by
// size-overlap runes, never by less than one. The window that reaches the end
// of the text is the last one. Chunks are not trimmed.
func ChunkCharacters(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if size < 1 {
		size = 1
	}
	step := max(1, size-overlap)

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
