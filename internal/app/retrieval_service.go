package app

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"chathdi/internal/repository"
)

// fileRefPattern matches inline markers like "[File: report.pdf]" or
// "[PDF Indexed (Shared): report.pdf]" that the client embeds in a message
// when the user attaches or references an uploaded file.
var fileRefPattern = regexp.MustCompile(`(?i)\[(?:File|PDF Indexed)(?:\s*\(.*?\))?:\s*(.*?)(?:\]|$)`)

const (
	contextHeader = "[System: Use the following information from the user's documents if relevant]"
	contextFooter = "[End System]"

	sourceShared   = "COMPANY KNOWLEDGE BASE"
	sourcePersonal = "PERSONAL DOCUMENT"
)

// Context is the outcome of one retrieval pass. Found reports whether any
// context was obtained; Suffix is what gets appended to the outgoing message
// and memoized on the user message for later turns.
type Context struct {
	Suffix string
	Found  bool
}

type RetrievalService struct {
	docStore         DocumentStore
	sectionStore     SectionStore
	embedder         TextEmbedder
	matchThreshold   float64
	matchCount       int
	fallbackSections int
}

func NewRetrievalService(docStore DocumentStore, sectionStore SectionStore, embedder TextEmbedder, matchThreshold float64, matchCount, fallbackSections int) *RetrievalService {
	if matchCount <= 0 {
		matchCount = 5
	}
	if fallbackSections <= 0 {
		fallbackSections = 5
	}
	return &RetrievalService{
		docStore:         docStore,
		sectionStore:     sectionStore,
		embedder:         embedder,
		matchThreshold:   matchThreshold,
		matchCount:       matchCount,
		fallbackSections: fallbackSections,
	}
}

// AssembleContext embeds the query, runs hybrid search, and falls back to a
// direct fetch when the query names a known file. Errors are returned to the
// caller, which decides whether to proceed without context.
func (s *RetrievalService) AssembleContext(ctx context.Context, userID, query string) (Context, error) {
	if userID == "" || strings.TrimSpace(query) == "" {
		return Context{}, ErrInvalidInput
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return Context{}, fmt.Errorf("embed query failed: %w", err)
	}

	matches, err := s.sectionStore.Search(ctx, userID, embedding, query, s.matchThreshold, s.matchCount)
	if err != nil {
		return Context{}, err
	}

	var contextText string
	if len(matches) > 0 {
		blocks := make([]string, len(matches))
		for i, m := range matches {
			label := sourcePersonal
			if m.IsShared {
				label = sourceShared
			}
			blocks[i] = fmt.Sprintf("-- Source: %s [%s]--\n%s \n", m.DocumentName, label, m.Content)
		}
		contextText = strings.Join(blocks, "\n")
	} else {
		contextText, err = s.fetchByFileReference(ctx, userID, query)
		if err != nil {
			return Context{}, err
		}
	}

	if contextText == "" {
		return Context{}, nil
	}

	suffix := fmt.Sprintf("\n\n%s\n%s \n%s", contextHeader, contextText, contextFooter)
	return Context{Suffix: suffix, Found: true}, nil
}

// Search exposes raw hybrid-search matches, mainly for the debug endpoint.
// Zero threshold/count fall back to the configured defaults.
func (s *RetrievalService) Search(ctx context.Context, userID, query string, threshold float64, topK int) ([]repository.SectionMatch, error) {
	if userID == "" || strings.TrimSpace(query) == "" {
		return nil, ErrInvalidInput
	}
	if threshold <= 0 {
		threshold = s.matchThreshold
	}
	if topK <= 0 {
		topK = s.matchCount
	}
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}
	return s.sectionStore.Search(ctx, userID, embedding, query, threshold, topK)
}

// fetchByFileReference handles "summarize this" style queries that match
// nothing semantically but name an uploaded file: the first sections of that
// document are returned directly, bypassing similarity scoring.
func (s *RetrievalService) fetchByFileReference(ctx context.Context, userID, query string) (string, error) {
	match := fileRefPattern.FindStringSubmatch(query)
	if match == nil || strings.TrimSpace(match[1]) == "" {
		return "", nil
	}

	fileName := strings.TrimSpace(match[1])
	if decoded, err := url.PathUnescape(fileName); err == nil {
		fileName = decoded
	}

	doc, err := s.docStore.FindVisibleByNameLike(userID, fileName)
	if err != nil {
		return "", err
	}
	if doc == nil {
		return "", nil
	}

	sections, err := s.sectionStore.ListByDocumentID(doc.ID, s.fallbackSections)
	if err != nil {
		return "", err
	}
	if len(sections) == 0 {
		return "", nil
	}

	contents := make([]string, len(sections))
	for i, sec := range sections {
		contents[i] = sec.Content
	}
	return fmt.Sprintf("-- Source: %s (Beginning of Document)--\n%s \n", fileName, strings.Join(contents, "\n\n")), nil
}
