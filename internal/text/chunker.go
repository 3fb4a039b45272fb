// Package text implements recursive character splitting for article content.
// Pieces are cut along natural-language boundaries (paragraphs, then
// sentences, then words, then raw characters as a last resort) and merged
// into windows of at most chunkSize characters, each window seeded with the
// word-aligned tail of its predecessor so adjacent chunks share context.
package text

import "strings"

// separators in priority order. Splitting keeps the separator attached to
// the preceding piece so rejoining pieces reconstructs the original text.
var separators = []string{"\n\n", "\n", ". ", " "}

// Split cuts content into overlapping chunks of at most chunkSize characters.
// Empty content yields nil; content that already fits yields one chunk equal
// to the trimmed input. Callers must ensure overlap < chunkSize.
func Split(content string, chunkSize, overlap int) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) <= chunkSize {
		return []string{trimmed}
	}

	pieces := split(trimmed, chunkSize, separators)
	return merge(pieces, chunkSize, overlap)
}

// split produces pieces of at most chunkSize characters, descending the
// separator hierarchy only for pieces that are still too large.
func split(text string, chunkSize int, seps []string) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}
	if len(seps) == 0 {
		return hardCut(text, chunkSize)
	}

	parts := strings.SplitAfter(text, seps[0])
	if len(parts) == 1 {
		return split(text, chunkSize, seps[1:])
	}

	var out []string
	for _, p := range parts {
		if p == "" {
			continue
		}
		if len(p) <= chunkSize {
			out = append(out, p)
			continue
		}
		out = append(out, split(p, chunkSize, seps[1:])...)
	}
	return out
}

func hardCut(text string, chunkSize int) []string {
	var out []string
	for len(text) > chunkSize {
		out = append(out, text[:chunkSize])
		text = text[chunkSize:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// merge accumulates pieces into windows, flushing when the next piece would
// overflow chunkSize and seeding the new window with the previous window's
// overlap tail. The seed counts against the window budget; when seed and
// piece cannot share a window the seed is dropped, so no chunk ever exceeds
// chunkSize.
func merge(pieces []string, chunkSize, overlap int) []string {
	var chunks []string
	var window strings.Builder
	var seed string

	flush := func() {
		chunk := strings.TrimSpace(window.String())
		prevSeed := seed
		window.Reset()
		seed = ""
		// A window holding nothing beyond its seed replays content the
		// previous chunk already carries.
		if chunk == "" || chunk == prevSeed {
			return
		}
		chunks = append(chunks, chunk)
		if tail := overlapTail(chunk, overlap); tail != "" {
			window.WriteString(tail)
			window.WriteString(" ")
			seed = tail
		}
	}

	for _, p := range pieces {
		if window.Len() > 0 && window.Len()+len(p) > chunkSize {
			flush()
			if window.Len()+len(p) > chunkSize {
				window.Reset()
				seed = ""
			}
		}
		window.WriteString(p)
	}

	// A final window holding only its overlap seed adds no new content.
	if chunk := strings.TrimSpace(window.String()); chunk != "" && chunk != seed {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// overlapTail returns the last overlap characters of chunk, advanced to the
// nearest word boundary so windows never start mid-word.
func overlapTail(chunk string, overlap int) string {
	if overlap <= 0 {
		return ""
	}
	if len(chunk) <= overlap {
		return chunk
	}
	tail := chunk[len(chunk)-overlap:]
	if i := strings.IndexAny(tail, " \n"); i >= 0 {
		tail = tail[i+1:]
	}
	return strings.TrimSpace(tail)
}
