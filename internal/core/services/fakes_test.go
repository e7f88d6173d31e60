package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
)

// fakeConfigStore is a map-backed driven.ConfigStore.
type fakeConfigStore struct {
	values map[string]any
}

func newFakeConfigStore() *fakeConfigStore {
	return &fakeConfigStore{values: make(map[string]any)}
}

func (s *fakeConfigStore) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *fakeConfigStore) GetString(key string) string {
	v, _ := s.values[key].(string)
	return v
}

func (s *fakeConfigStore) GetInt(key string) int {
	switch v := s.values[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func (s *fakeConfigStore) GetFloat(key string) float64 {
	switch v := s.values[key].(type) {
	case int:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

func (s *fakeConfigStore) GetBool(key string) bool {
	v, _ := s.values[key].(bool)
	return v
}

func (s *fakeConfigStore) GetStringSlice(key string) []string {
	v, _ := s.values[key].([]string)
	return v
}

func (s *fakeConfigStore) Set(key string, value any) error {
	s.values[key] = value
	return nil
}

func (s *fakeConfigStore) Save() error  { return nil }
func (s *fakeConfigStore) Load() error  { return nil }
func (s *fakeConfigStore) Path() string { return ":fake:" }

// scriptedIndex is an in-memory driven.VectorIndex whose neighbour scores
// can be fixed per pair. Unscripted pairs score by cosine similarity.
type scriptedIndex struct {
	mu      sync.Mutex
	order   []string
	items   map[string]domain.IndexItem
	scores  map[[2]string]float64
	queries int
	failGet error
	failPut map[string]error
	closed  bool
}

func newScriptedIndex() *scriptedIndex {
	return &scriptedIndex{
		items:   make(map[string]domain.IndexItem),
		scores:  make(map[[2]string]float64),
		failPut: make(map[string]error),
	}
}

// score fixes the similarity between a and b in both directions.
func (x *scriptedIndex) score(a, b string, s float64) {
	x.scores[[2]string{a, b}] = s
	x.scores[[2]string{b, a}] = s
}

// add stores an ungrouped item with a vector orthogonal to every other
// added item, so only scripted pairs score above zero.
func (x *scriptedIndex) add(id string, ct domain.ContentType) {
	vector := make([]float32, 64)
	vector[len(x.order)%64] = 1
	_ = x.Insert(context.Background(), domain.IndexItem{
		ID:       id,
		Vector:   vector,
		Metadata: domain.ItemMetadata{ContentType: ct, Content: "content " + id, SourceID: "src.md"},
	})
}

func (x *scriptedIndex) group(id string) string {
	return x.items[id].Metadata.GroupID
}

func (x *scriptedIndex) Insert(_ context.Context, item domain.IndexItem) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.items[item.ID]; ok {
		return domain.ErrAlreadyExists
	}
	x.order = append(x.order, item.ID)
	x.items[item.ID] = item.Clone()
	return nil
}

func (x *scriptedIndex) Upsert(_ context.Context, item domain.IndexItem) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.items[item.ID]; !ok {
		x.order = append(x.order, item.ID)
	}
	x.items[item.ID] = item.Clone()
	return nil
}

// seedFor returns the first item whose vector equals v.
func (x *scriptedIndex) seedFor(v []float32) string {
	for _, id := range x.order {
		if vectorsEqual(x.items[id].Vector, v) {
			return id
		}
	}
	return ""
}

func vectorsEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (x *scriptedIndex) Query(
	_ context.Context, vector []float32, topK int, ct domain.ContentType,
) ([]driven.VectorHit, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.queries++
	seed := x.seedFor(vector)
	hits := make([]driven.VectorHit, 0, len(x.order))
	for _, id := range x.order {
		item := x.items[id]
		if ct != "" && item.Metadata.ContentType != ct {
			continue
		}
		score, ok := x.scores[[2]string{seed, id}]
		if !ok {
			score = domain.CosineSimilarity(vector, item.Vector)
		}
		hits = append(hits, driven.VectorHit{Item: item.Clone(), Score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (x *scriptedIndex) Get(_ context.Context, id string) (*domain.IndexItem, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.failGet != nil {
		return nil, x.failGet
	}
	item, ok := x.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := item.Clone()
	return &out, nil
}

func (x *scriptedIndex) UpdateMetadata(_ context.Context, id string, patch domain.MetadataPatch) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.failPut[id]; err != nil {
		return err
	}
	item, ok := x.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	item.Metadata = patch.Apply(item.Metadata)
	x.items[id] = item
	return nil
}

func (x *scriptedIndex) ListAll(context.Context) ([]domain.IndexItem, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	out := make([]domain.IndexItem, 0, len(x.order))
	for _, id := range x.order {
		out = append(out, x.items[id].Clone())
	}
	return out, nil
}

func (x *scriptedIndex) Delete(_ context.Context, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.items[id]; !ok {
		return nil
	}
	delete(x.items, id)
	for i, o := range x.order {
		if o == id {
			x.order = append(x.order[:i], x.order[i+1:]...)
			break
		}
	}
	return nil
}

func (x *scriptedIndex) Reset(context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.order = nil
	x.items = make(map[string]domain.IndexItem)
	return nil
}

func (x *scriptedIndex) Close() error {
	x.closed = true
	return nil
}

// fakeMarkdown understands headings, bullet lists, fenced code and
// paragraphs separated by blank lines.
type fakeMarkdown struct{}

func (fakeMarkdown) Parse(_ context.Context, text string) (*domain.Node, error) {
	root := domain.NewRoot()
	for _, block := range strings.Split(strings.TrimSpace(text), "\n\n") {
		block = strings.TrimSpace(block)
		switch {
		case block == "":
		case strings.HasPrefix(block, "#"):
			depth := len(block) - len(strings.TrimLeft(block, "#"))
			root.Children = append(root.Children, domain.NewHeading(depth, strings.TrimSpace(block[depth:])))
		case strings.HasPrefix(block, "```"):
			body := strings.TrimSuffix(strings.TrimPrefix(block, "```\n"), "\n```")
			root.Children = append(root.Children, &domain.Node{Type: domain.NodeCode, Value: body})
		case strings.HasPrefix(block, "- "):
			list := &domain.Node{Type: domain.NodeList}
			for _, line := range strings.Split(block, "\n") {
				list.Children = append(list.Children, &domain.Node{
					Type:     domain.NodeListItem,
					Children: []*domain.Node{domain.NewParagraph(strings.TrimPrefix(line, "- "))},
				})
			}
			root.Children = append(root.Children, list)
		default:
			root.Children = append(root.Children, domain.NewParagraph(block))
		}
	}
	return root, nil
}

func (fakeMarkdown) Serialize(tree *domain.Node) (string, error) {
	parts := make([]string, 0, len(tree.Children))
	for _, n := range tree.Children {
		switch n.Type {
		case domain.NodeHeading:
			parts = append(parts, strings.Repeat("#", n.Depth)+" "+n.Text())
		case domain.NodeCode:
			parts = append(parts, "```\n"+n.Value+"\n```")
		case domain.NodeList:
			lines := make([]string, len(n.Children))
			for i, item := range n.Children {
				lines[i] = "- " + item.Text()
			}
			parts = append(parts, strings.Join(lines, "\n"))
		default:
			parts = append(parts, n.Text())
		}
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}

// fakeEmbedder gives every distinct text its own axis unless a vector is
// fixed for it, so unrelated texts never look similar.
type fakeEmbedder struct {
	mu      sync.Mutex
	fixed   map[string][]float32
	axes    map[string]int
	calls   int
	failErr error
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{fixed: make(map[string][]float32), axes: make(map[string]int)}
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (e *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.failErr != nil {
		return nil, e.failErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := e.fixed[text]; ok {
			out[i] = append([]float32(nil), v...)
			continue
		}
		axis, ok := e.axes[text]
		if !ok {
			axis = len(e.axes)
			e.axes[text] = axis
		}
		v := make([]float32, 128)
		v[axis%128] = 1
		out[i] = v
	}
	return out, nil
}

func (e *fakeEmbedder) Dimensions() int            { return 128 }
func (e *fakeEmbedder) ModelName() string          { return "fake" }
func (e *fakeEmbedder) Ping(context.Context) error { return nil }
func (e *fakeEmbedder) Close() error               { return nil }
func (e *fakeEmbedder) String() string             { return fmt.Sprintf("fake(%d)", len(e.axes)) }

// fakeDestinations is a map-backed driven.DestinationStore.
type fakeDestinations struct {
	docs map[string]domain.DestinationDocument
}

func newFakeDestinations() *fakeDestinations {
	return &fakeDestinations{docs: make(map[string]domain.DestinationDocument)}
}

func (d *fakeDestinations) Save(_ context.Context, doc domain.DestinationDocument) error {
	d.docs[doc.URI] = doc.Clone()
	return nil
}

func (d *fakeDestinations) Get(_ context.Context, uri string) (*domain.DestinationDocument, error) {
	doc, ok := d.docs[uri]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := doc.Clone()
	return &out, nil
}

func (d *fakeDestinations) List(context.Context) ([]domain.DestinationDocument, error) {
	out := make([]domain.DestinationDocument, 0, len(d.docs))
	for _, doc := range d.docs {
		out = append(out, doc.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out, nil
}

func (d *fakeDestinations) Delete(_ context.Context, uri string) error {
	delete(d.docs, uri)
	return nil
}

func (d *fakeDestinations) Reset(context.Context) error {
	d.docs = make(map[string]domain.DestinationDocument)
	return nil
}

var (
	_ driven.ConfigStore      = (*fakeConfigStore)(nil)
	_ driven.VectorIndex      = (*scriptedIndex)(nil)
	_ driven.MarkdownTree     = fakeMarkdown{}
	_ driven.EmbeddingService = (*fakeEmbedder)(nil)
	_ driven.DestinationStore = (*fakeDestinations)(nil)
)
