// Package sniffer provides automatic detection of CSV/TSV file layouts.
// It identifies the delimiter and the header row of exports that carry
// metadata lines above the data.
package sniffer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Common statement header keywords (multi-language)
var headerKeywords = []string{
	// Portuguese
	"data", "descrição", "descricao", "valor", "categoria", "pagamento", "forma pgto",
	"débito", "debito", "crédito", "credito", "saldo", "histórico", "historico", "lançamento",
	// English
	"date", "description", "amount", "category", "payment", "debit", "credit", "balance",
	// Spanish
	"fecha", "descripción", "importe",
}

// maxHeaderSearchLines bounds how far down the header row is searched for.
const maxHeaderSearchLines = 20

var keywordMatcher = ahocorasick.NewStringMatcher(headerKeywords)

var candidateDelimiters = []rune{';', '\t', ',', '|'}

// FileConfig holds the detected configuration for a CSV/TSV file
type FileConfig struct {
	Delimiter rune     // The field delimiter (';', ',', '\t', '|')
	SkipLines int      // Number of metadata lines before headers
	Headers   []string // Detected header names
}

var (
	ErrEmptyFile      = errors.New("file is empty")
	ErrNoHeadersFound = errors.New("could not find data headers")
)

// DetectConfig analyzes a CSV/TSV file and returns its configuration
func DetectConfig(data []byte) (*FileConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	lines := strings.Split(string(data), "\n")
	delimiter, skipLines, err := findHeaderRow(lines)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(cleanLine(lines[skipLines], skipLines == 0)))
	reader.Comma = delimiter
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, err
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	return &FileConfig{
		Delimiter: delimiter,
		SkipLines: skipLines,
		Headers:   headers,
	}, nil
}

// findHeaderRow locates the header row and its delimiter. Lines that contain
// header keywords win; otherwise the widest line is taken.
func findHeaderRow(lines []string) (rune, int, error) {
	keywordIndex, keywordScore := -1, 0
	keywordDelimiter := rune(0)

	fallbackIndex, fallbackCount := -1, -1
	fallbackDelimiter := rune(0)

	for i, line := range lines {
		if i >= maxHeaderSearchLines {
			break
		}

		line = cleanLine(line, i == 0)
		if line == "" {
			continue
		}

		delimiter, count := detectDelimiter(line)
		matches := len(keywordMatcher.MatchThreadSafe([]byte(strings.ToLower(line))))

		if matches > 0 && count > 0 {
			// Real headers have many columns; metadata lines have few.
			score := count*10 + matches
			if score > keywordScore {
				keywordIndex, keywordScore, keywordDelimiter = i, score, delimiter
			}
			continue
		}

		if count > fallbackCount {
			fallbackIndex, fallbackCount, fallbackDelimiter = i, count, delimiter
		}
	}

	switch {
	case keywordIndex >= 0:
		return keywordDelimiter, keywordIndex, nil
	case fallbackIndex >= 0:
		return fallbackDelimiter, fallbackIndex, nil
	}
	return 0, 0, ErrNoHeadersFound
}

func cleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r")
	if firstLine {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	return strings.TrimSpace(line)
}

// detectDelimiter returns the most frequent candidate delimiter and its count.
// Single-column lines fall back to a comma.
func detectDelimiter(line string) (rune, int) {
	bestDelimiter := ','
	bestCount := 0
	for _, d := range candidateDelimiters {
		count := strings.Count(line, string(d))
		if count > bestCount {
			bestCount = count
			bestDelimiter = d
		}
	}
	return bestDelimiter, bestCount
}
