package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hndigest/internal/domain"
	"hndigest/internal/filter"
)

type fakeSource struct {
	stories []domain.Story
	err     error
}

func (f *fakeSource) TopStories(ctx context.Context) ([]domain.Story, error) {
	return f.stories, f.err
}

type fakeRepo struct {
	seen  map[int]bool
	saved []domain.ProcessedStory
}

func (f *fakeRepo) AlreadyProcessed(ctx context.Context, ids []int) (map[int]bool, error) {
	return f.seen, nil
}

func (f *fakeRepo) SaveProcessed(ctx context.Context, story domain.ProcessedStory) error {
	f.saved = append(f.saved, story)
	return nil
}

type fakeScraper struct {
	content string
	err     error
}

func (f *fakeScraper) Scrape(ctx context.Context, url string) (domain.ArticleContent, error) {
	if f.err != nil {
		return domain.ArticleContent{}, f.err
	}
	return domain.ArticleContent{URL: url, Content: f.content}, nil
}

type fakeSummarizer struct {
	summary string
	err     error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, title, content, url string) (string, error) {
	return f.summary, f.err
}

type fakeMailer struct {
	sent      int
	subject   string
	body      string
	sendErr   error
	fallbacks []string
}

func (f *fakeMailer) SendDigest(ctx context.Context, subject, body string) error {
	f.sent++
	f.subject = subject
	f.body = body
	return f.sendErr
}

func (f *fakeMailer) SendFallback(ctx context.Context, reason string) error {
	f.fallbacks = append(f.fallbacks, reason)
	return nil
}

func testPipeline(t *testing.T, deps PipelineDeps) *Pipeline {
	t.Helper()

	if deps.Ranker == nil {
		taxonomy, err := filter.DefaultTaxonomy()
		if err != nil {
			t.Fatalf("taxonomy: %v", err)
		}
		deps.Ranker = filter.NewRanker(filter.NewMatcher(taxonomy, nil), nil)
	}
	if deps.MaxArticles == 0 {
		deps.MaxArticles = 100
	}
	if deps.OutputDir == "" {
		deps.OutputDir = t.TempDir()
	}

	return NewPipeline(deps)
}

func aiStories() []domain.Story {
	return []domain.Story{
		{ID: 1, Title: "OpenAI releases GPT-5", URL: "https://openai.com/post", Score: 200},
		{ID: 2, Title: "JS framework update", URL: "https://js.com", Score: 150},
		{ID: 3, Title: "Claude for science", URL: "https://anthropic.com/research", Score: 90},
	}
}

func TestScanFiltersAndRanks(t *testing.T) {
	p := testPipeline(t, PipelineDeps{Source: &fakeSource{stories: aiStories()}})

	scored, err := p.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(scored) != 2 {
		t.Fatalf("expected 2 relevant stories, got %d", len(scored))
	}
	if scored[0].Story.ID != 1 || scored[1].Story.ID != 3 {
		t.Fatalf("unexpected order: %d, %d", scored[0].Story.ID, scored[1].Story.ID)
	}
}

func TestScanSkipsAlreadyProcessed(t *testing.T) {
	repo := &fakeRepo{seen: map[int]bool{1: true}}
	p := testPipeline(t, PipelineDeps{Source: &fakeSource{stories: aiStories()}, Repository: repo})

	scored, err := p.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(scored) != 1 {
		t.Fatalf("expected 1 fresh story, got %d", len(scored))
	}
	if scored[0].Story.ID != 3 {
		t.Fatalf("unexpected story: %d", scored[0].Story.ID)
	}
}

func TestScanSourceFailure(t *testing.T) {
	p := testPipeline(t, PipelineDeps{Source: &fakeSource{err: fmt.Errorf("service down")}})

	if _, err := p.Scan(context.Background()); err == nil {
		t.Fatal("expected error when the source fails")
	}
}

func TestRunDigestWritesFileAndSendsEmail(t *testing.T) {
	outputDir := t.TempDir()
	mailer := &fakeMailer{}
	repo := &fakeRepo{}

	p := testPipeline(t, PipelineDeps{
		Source:     &fakeSource{stories: aiStories()},
		Repository: repo,
		Scraper:    &fakeScraper{content: strings.Repeat("article text ", 20)},
		Summarizer: &fakeSummarizer{summary: "A fine summary."},
		Mailer:     mailer,
		OutputDir:  outputDir,
	})

	if err := p.RunDigest(context.Background(), RunOptions{}); err != nil {
		t.Fatalf("RunDigest error: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(outputDir, "digest_*.txt"))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one digest file, got %v (err %v)", files, err)
	}

	raw, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read digest: %v", err)
	}
	if !strings.Contains(string(raw), "OpenAI releases GPT-5") {
		t.Fatal("digest file missing story title")
	}
	if !strings.Contains(string(raw), "A fine summary.") {
		t.Fatal("digest file missing summary")
	}

	if mailer.sent != 1 {
		t.Fatalf("expected 1 email, got %d", mailer.sent)
	}
	if !strings.Contains(mailer.subject, "2 stories") {
		t.Fatalf("unexpected subject: %s", mailer.subject)
	}

	if len(repo.saved) != 2 {
		t.Fatalf("expected 2 processed stories saved, got %d", len(repo.saved))
	}
	for _, s := range repo.saved {
		if s.Status != domain.StatusDelivered {
			t.Fatalf("unexpected status: %s", s.Status)
		}
	}
}

func TestRunDigestDryRunSkipsEmail(t *testing.T) {
	mailer := &fakeMailer{}

	p := testPipeline(t, PipelineDeps{
		Source: &fakeSource{stories: aiStories()},
		Mailer: mailer,
	})

	if err := p.RunDigest(context.Background(), RunOptions{DryRun: true}); err != nil {
		t.Fatalf("RunDigest error: %v", err)
	}

	if mailer.sent != 0 {
		t.Fatalf("dry run must not send email, sent %d", mailer.sent)
	}
}

func TestRunDigestNoRelevantStories(t *testing.T) {
	mailer := &fakeMailer{}
	outputDir := t.TempDir()

	p := testPipeline(t, PipelineDeps{
		Source:    &fakeSource{stories: []domain.Story{{ID: 9, Title: "Rust release notes", Score: 80}}},
		Mailer:    mailer,
		OutputDir: outputDir,
	})

	if err := p.RunDigest(context.Background(), RunOptions{}); err != nil {
		t.Fatalf("RunDigest error: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(outputDir, "digest_*.txt"))
	if len(files) != 0 {
		t.Fatalf("no digest should be written, found %v", files)
	}
	if mailer.sent != 0 {
		t.Fatalf("no email should be sent, sent %d", mailer.sent)
	}
}

func TestRunDigestEmailFailureKeepsLocalCopy(t *testing.T) {
	outputDir := t.TempDir()
	mailer := &fakeMailer{sendErr: fmt.Errorf("smtp down")}

	p := testPipeline(t, PipelineDeps{
		Source:    &fakeSource{stories: aiStories()},
		Mailer:    mailer,
		OutputDir: outputDir,
	})

	err := p.RunDigest(context.Background(), RunOptions{})
	if err == nil {
		t.Fatal("expected error when email delivery fails")
	}

	files, _ := filepath.Glob(filepath.Join(outputDir, "digest_*.txt"))
	if len(files) != 1 {
		t.Fatalf("local digest copy must survive email failure, found %v", files)
	}
	if len(mailer.fallbacks) != 0 {
		t.Fatalf("a written digest must not trigger the fallback notification, got %v", mailer.fallbacks)
	}
}

func TestRunDigestScanFailureSendsFallbackNotification(t *testing.T) {
	mailer := &fakeMailer{}

	p := testPipeline(t, PipelineDeps{
		Source: &fakeSource{err: fmt.Errorf("service down")},
		Mailer: mailer,
	})

	err := p.RunDigest(context.Background(), RunOptions{})
	if err == nil {
		t.Fatal("expected error when the source fails")
	}

	if len(mailer.fallbacks) != 1 {
		t.Fatalf("expected one fallback notification, got %d", len(mailer.fallbacks))
	}
	if !strings.Contains(mailer.fallbacks[0], "service down") {
		t.Fatalf("fallback reason must carry the cause, got %q", mailer.fallbacks[0])
	}
	if mailer.sent != 0 {
		t.Fatalf("no digest email may be sent on a failed run, sent %d", mailer.sent)
	}
}

func TestRunDigestDryRunSkipsFallbackNotification(t *testing.T) {
	mailer := &fakeMailer{}

	p := testPipeline(t, PipelineDeps{
		Source: &fakeSource{err: fmt.Errorf("service down")},
		Mailer: mailer,
	})

	if err := p.RunDigest(context.Background(), RunOptions{DryRun: true}); err == nil {
		t.Fatal("expected error when the source fails")
	}

	if len(mailer.fallbacks) != 0 {
		t.Fatalf("dry run must not notify, got %v", mailer.fallbacks)
	}
}

func TestRunDigestFallbackSummaries(t *testing.T) {
	outputDir := t.TempDir()

	p := testPipeline(t, PipelineDeps{
		Source:     &fakeSource{stories: aiStories()},
		Scraper:    &fakeScraper{err: fmt.Errorf("blocked")},
		Summarizer: &fakeSummarizer{summary: "unused"},
		OutputDir:  outputDir,
	})

	if err := p.RunDigest(context.Background(), RunOptions{DryRun: true}); err != nil {
		t.Fatalf("RunDigest error: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(outputDir, "digest_*.txt"))
	if len(files) != 1 {
		t.Fatalf("expected one digest file, got %v", files)
	}

	raw, _ := os.ReadFile(files[0])
	if !strings.Contains(string(raw), "Summary not available") {
		t.Fatal("expected fallback summary text in digest")
	}
}
