package app

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"chathdi/internal/ai"
	"chathdi/internal/model"
	"chathdi/internal/repository"
)

// fakeEmbedder maps each word to a deterministic direction, so identical
// texts produce identical vectors and similar word sets produce similar ones.
type fakeEmbedder struct {
	dimension int
	failOn    map[string]error
	calls     int
}

func newFakeEmbedder(dimension int) *fakeEmbedder {
	return &fakeEmbedder{dimension: dimension, failOn: map[string]error{}}
}

func (f *fakeEmbedder) Dimension() int { return f.dimension }

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	for needle, err := range f.failOn {
		if strings.Contains(text, needle) {
			return nil, err
		}
	}
	vec := make([]float32, f.dimension)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[int(h.Sum32())%f.dimension]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

type fakeDocStore struct {
	docs      []model.Document
	createErr error
}

func (f *fakeDocStore) Create(doc *model.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.docs = append(f.docs, *doc)
	return nil
}

func (f *fakeDocStore) ListVisibleToUser(userID string) ([]model.Document, error) {
	var out []model.Document
	for _, d := range f.docs {
		if d.UserID == userID || d.IsShared {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocStore) GetByIDAndUserID(id, userID string) (*model.Document, error) {
	for _, d := range f.docs {
		if d.ID == id && d.UserID == userID {
			doc := d
			return &doc, nil
		}
	}
	return nil, nil
}

func (f *fakeDocStore) FindVisibleByNameLike(userID, name string) (*model.Document, error) {
	for _, d := range f.docs {
		if (d.UserID == userID || d.IsShared) && strings.Contains(strings.ToLower(d.Name), strings.ToLower(name)) {
			doc := d
			return &doc, nil
		}
	}
	return nil, nil
}

func (f *fakeDocStore) DeleteByIDAndUserID(id, userID string) error {
	kept := f.docs[:0]
	for _, d := range f.docs {
		if !(d.ID == id && d.UserID == userID) {
			kept = append(kept, d)
		}
	}
	f.docs = kept
	return nil
}

// fakeSectionStore keeps sections in memory and answers Search with plain
// cosine similarity against the stored embeddings, mirroring the vector half
// of the hybrid query.
type fakeSectionStore struct {
	docs       *fakeDocStore
	sections   []model.DocumentSection
	batchSizes []int
	createErr  error
	searchErr  error
}

func (f *fakeSectionStore) CreateBatches(sections []model.DocumentSection, batchSize int) error {
	if f.createErr != nil {
		return f.createErr
	}
	for i := 0; i < len(sections); i += batchSize {
		end := i + batchSize
		if end > len(sections) {
			end = len(sections)
		}
		f.batchSizes = append(f.batchSizes, end-i)
	}
	f.sections = append(f.sections, sections...)
	return nil
}

func (f *fakeSectionStore) Search(_ context.Context, userID string, embedding []float32, _ string, threshold float64, count int) ([]repository.SectionMatch, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []repository.SectionMatch
	for _, sec := range f.sections {
		doc := f.docByID(sec.DocumentID)
		if doc == nil || (doc.UserID != userID && !doc.IsShared) {
			continue
		}
		sim := cosine(embedding, sec.Embedding.Slice())
		if sim >= threshold {
			out = append(out, repository.SectionMatch{
				Content:      sec.Content,
				DocumentName: doc.Name,
				IsShared:     doc.IsShared,
				Similarity:   sim,
			})
		}
	}
	// descending by similarity
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Similarity > out[i].Similarity {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if len(out) > count {
		out = out[:count]
	}
	return out, nil
}

func (f *fakeSectionStore) ListByDocumentID(documentID string, limit int) ([]model.DocumentSection, error) {
	var out []model.DocumentSection
	for _, sec := range f.sections {
		if sec.DocumentID == documentID {
			out = append(out, sec)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].SequenceIndex < out[i].SequenceIndex {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSectionStore) DeleteByDocumentID(documentID string) error {
	kept := f.sections[:0]
	for _, sec := range f.sections {
		if sec.DocumentID != documentID {
			kept = append(kept, sec)
		}
	}
	f.sections = kept
	return nil
}

func (f *fakeSectionStore) docByID(id string) *model.Document {
	for _, d := range f.docs.docs {
		if d.ID == id {
			doc := d
			return &doc
		}
	}
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

type fakeConvStore struct {
	convs   map[string]model.Conversation
	upserts int
}

func newFakeConvStore() *fakeConvStore {
	return &fakeConvStore{convs: map[string]model.Conversation{}}
}

func (f *fakeConvStore) Upsert(conv *model.Conversation) error {
	f.upserts++
	f.convs[conv.ID] = *conv
	return nil
}

func (f *fakeConvStore) ListByUserID(userID string) ([]model.Conversation, error) {
	var out []model.Conversation
	for _, c := range f.convs {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConvStore) GetByIDAndUserID(id, userID string) (*model.Conversation, error) {
	c, ok := f.convs[id]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeConvStore) DeleteByIDAndUserID(id, userID string) error {
	delete(f.convs, id)
	return nil
}

type fakePublisher struct {
	published []model.Conversation
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, conv model.Conversation) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, conv)
	return nil
}

type fakeAssembler struct {
	ctx Context
	err error
}

func (f *fakeAssembler) AssembleContext(_ context.Context, _, _ string) (Context, error) {
	return f.ctx, f.err
}

type fakeCompleter struct {
	reply     string
	err       error
	lastModel string
	lastSent  []ai.ChatMessage
}

func (f *fakeCompleter) Complete(_ context.Context, model string, messages []ai.ChatMessage) (*ai.ChatReply, error) {
	f.lastModel = model
	f.lastSent = messages
	if f.err != nil {
		return nil, f.err
	}
	return &ai.ChatReply{Response: f.reply}, nil
}

type fakeProjectStore struct {
	projects []model.Project
}

func (f *fakeProjectStore) Create(project *model.Project) error {
	f.projects = append(f.projects, *project)
	return nil
}

func (f *fakeProjectStore) ListByUserID(userID string) ([]model.Project, error) {
	var out []model.Project
	for _, p := range f.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjectStore) GetByIDAndUserID(id, userID string) (*model.Project, error) {
	for _, p := range f.projects {
		if p.ID == id && p.UserID == userID {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeProjectStore) DeleteByIDAndUserID(id, userID string) error {
	kept := f.projects[:0]
	for _, p := range f.projects {
		if p.ID != id || p.UserID != userID {
			kept = append(kept, p)
		}
	}
	f.projects = kept
	return nil
}

type fakeUnlinker struct {
	unlinked string
}

func (f *fakeUnlinker) UnlinkProject(projectID string) error {
	f.unlinked = projectID
	return nil
}
