package ingest

import "strings"

// separators are tried in order when looking for a break point near
// the end of a chunk: paragraph, line, sentence, word.
var separators = []string{"\n\n", "\n", ". ", " "}

// SplitText cuts text into chunks of at most size characters with the
// given overlap between consecutive chunks. Cuts prefer natural
// boundaries near the size limit and fall back to a hard cut.
func SplitText(content string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap >= size {
		overlap = size / 2
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	var chunks []string
	for len(content) > 0 {
		if len(content) <= size {
			chunks = append(chunks, content)
			break
		}

		cut := breakPoint(content, size)
		chunk := strings.TrimSpace(content[:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= 0 {
			next = cut
		}
		content = strings.TrimLeft(content[next:], " \n")
	}
	return chunks
}

// breakPoint finds where to cut a chunk: the last natural separator in
// the second half of the window, or the full window when none exists.
func breakPoint(content string, size int) int {
	window := content[:size]
	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx > size/2 {
			return idx + len(sep)
		}
	}
	return size
}
