package reports

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"academic-analytics/report-backend/internal/reports/export"
	"academic-analytics/report-backend/internal/reports/paths"
)

// MockRenderer is a mock implementation of the Renderer interface
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) RenderToFile(path string, doc export.Document) error {
	args := m.Called(path, doc)
	return args.Error(0)
}

// blockingRenderer waits for release before returning
type blockingRenderer struct {
	release chan struct{}
}

func (r *blockingRenderer) RenderToFile(path string, doc export.Document) error {
	<-r.release
	return nil
}

type panickingRenderer struct{}

func (panickingRenderer) RenderToFile(path string, doc export.Document) error {
	panic("engine exploded")
}

func exampleRequest(filename string) ReportRequest {
	return ReportRequest{
		Subjects: []SubjectRecord{
			{Name: "Math", Average: 15.00, Coeff: 4, WeightedScore: 60.00},
			{Name: "Physics", Average: 12.50, Coeff: 3, WeightedScore: 37.50},
		},
		TotalAvg:       13.80,
		Classification: "good",
		Filename:       filename,
	}
}

// uncompressedService writes real PDFs with readable content streams
func uncompressedService(t *testing.T) (*Service, string) {
	dir := t.TempDir()
	opts := export.DefaultPDFOptions()
	opts.Compress = false

	resolver := paths.WithStrategy(func() (string, error) { return dir, nil })
	return NewService(resolver, export.NewPDFRenderer(opts), zap.NewNop()), dir
}

func TestGenerateExample(t *testing.T) {
	service, dir := uncompressedService(t)

	result := service.Generate(exampleRequest("good_report.pdf"))

	require.True(t, result.Success, result.Message)
	assert.Regexp(t, `^Saved to: .*good_report.*`, result.Message)
	assert.Equal(t, filepath.Join(dir, "good_report.pdf"), result.Path)
	assert.NoError(t, result.Err)

	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	content := string(data)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, content, "(Math)")
	assert.Contains(t, content, "(Physics)")
	assert.Contains(t, content, "(TOTALS)")
	assert.Contains(t, content, "(7)")
	assert.Contains(t, content, "(97.50)")
	assert.Contains(t, content, "(13.80)")
	assert.Contains(t, content, "(PERFORMANCE: GOOD)")
	assert.Contains(t, content, "(ACADEMIC REPORT)")
}

func TestGenerateBannerDate(t *testing.T) {
	dir := t.TempDir()
	opts := export.DefaultPDFOptions()
	opts.Compress = false
	fixed := time.Date(2026, time.March, 5, 9, 30, 0, 0, time.UTC)

	service := NewService(
		paths.WithStrategy(func() (string, error) { return dir, nil }),
		export.NewPDFRenderer(opts),
		zap.NewNop(),
		WithClock(func() time.Time { return fixed }),
	)

	result := service.Generate(exampleRequest("dated.pdf"))
	require.True(t, result.Success, result.Message)

	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "(05 March, 2026)")
}

func TestGenerateEmptySubjects(t *testing.T) {
	service, _ := uncompressedService(t)

	req := exampleRequest("empty.pdf")
	req.Subjects = nil

	result := service.Generate(req)
	require.True(t, result.Success, result.Message)

	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "(SUBJECT)")
	assert.Contains(t, string(data), "(TOTALS)")
	assert.Contains(t, string(data), "(0.00)")
	assert.Contains(t, string(data), "%%EOF")
}

func TestGenerateOverwritesExistingFile(t *testing.T) {
	service, _ := uncompressedService(t)

	first := exampleRequest("same.pdf")
	require.True(t, service.Generate(first).Success)

	second := exampleRequest("same.pdf")
	second.Subjects = []SubjectRecord{{Name: "Chemistry", Average: 11, Coeff: 2, WeightedScore: 22}}
	result := service.Generate(second)
	require.True(t, result.Success)

	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "(Chemistry)")
	assert.Contains(t, string(data), "(22.00)")
	assert.NotContains(t, string(data), "(Math)")
	assert.NotContains(t, string(data), "(97.50)")
}

func TestGenerateCreatesDownloadsFallback(t *testing.T) {
	home := t.TempDir()
	resolver := &paths.Resolver{
		MobileDir: filepath.Join(t.TempDir(), "absent"),
		HomeDir:   func() (string, error) { return home, nil },
	}
	service := NewService(resolver, export.NewPDFRenderer(export.DefaultPDFOptions()), zap.NewNop())

	result := service.Generate(exampleRequest("good_report.pdf"))
	require.True(t, result.Success, result.Message)
	assert.Equal(t, filepath.Join(home, "Downloads", "good_report.pdf"), result.Path)

	_, err := os.Stat(result.Path)
	assert.NoError(t, err)
}

func TestGeneratePathError(t *testing.T) {
	renderer := new(MockRenderer)
	resolver := paths.WithStrategy(func() (string, error) { return "", errors.New("permission denied") })
	service := NewService(resolver, renderer, zap.NewNop())

	result := service.Generate(exampleRequest("report.pdf"))

	assert.False(t, result.Success)
	assert.Regexp(t, `^Path Error: .*permission denied`, result.Message)
	var pathErr *paths.PathError
	assert.ErrorAs(t, result.Err, &pathErr)

	// no rendering is attempted
	renderer.AssertNotCalled(t, "RenderToFile", mock.Anything, mock.Anything)
}

func TestGenerateRenderError(t *testing.T) {
	service, _ := uncompressedService(t)

	// the directory part of the filename does not exist
	result := service.Generate(exampleRequest(filepath.Join("missing", "report.pdf")))

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)
	var renderErr *export.RenderError
	assert.ErrorAs(t, result.Err, &renderErr)
}

func TestGenerateWrapsForeignRendererErrors(t *testing.T) {
	dir := t.TempDir()
	renderer := new(MockRenderer)
	renderer.On("RenderToFile", filepath.Join(dir, "report.pdf"), mock.AnythingOfType("export.Document")).
		Return(errors.New("disk full"))

	service := NewService(paths.WithStrategy(func() (string, error) { return dir, nil }), renderer, zap.NewNop())
	result := service.Generate(exampleRequest("report.pdf"))

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "disk full")
	var renderErr *export.RenderError
	assert.ErrorAs(t, result.Err, &renderErr)
	renderer.AssertExpectations(t)
}

func TestGeneratePassesTableToRenderer(t *testing.T) {
	dir := t.TempDir()
	renderer := new(MockRenderer)
	renderer.On("RenderToFile", mock.Anything, mock.MatchedBy(func(doc export.Document) bool {
		return len(doc.Table.Rows) == 2 &&
			doc.Table.Totals[2] == "7" &&
			doc.Table.Totals[3] == "97.50" &&
			doc.Decorate != nil
	})).Return(nil)

	service := NewService(paths.WithStrategy(func() (string, error) { return dir, nil }), renderer, zap.NewNop())
	result := service.Generate(exampleRequest("report.pdf"))

	assert.True(t, result.Success)
	renderer.AssertExpectations(t)
}

func TestGenerateRecoversRendererPanic(t *testing.T) {
	dir := t.TempDir()
	service := NewService(paths.WithStrategy(func() (string, error) { return dir, nil }), panickingRenderer{}, zap.NewNop())

	result := service.Generate(exampleRequest("report.pdf"))

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "engine exploded")
}

func TestGenerateRecoversResolverPanic(t *testing.T) {
	renderer := new(MockRenderer)
	resolver := paths.WithStrategy(func() (string, error) { panic("no storage mounted") })
	service := NewService(resolver, renderer, zap.NewNop())

	result := service.Generate(exampleRequest("report.pdf"))

	assert.False(t, result.Success)
	assert.Regexp(t, `^Path Error: .*no storage mounted`, result.Message)
	var pathErr *paths.PathError
	assert.ErrorAs(t, result.Err, &pathErr)
	renderer.AssertNotCalled(t, "RenderToFile", mock.Anything, mock.Anything)
}

func TestGenerateAsyncDeliversResolverPanic(t *testing.T) {
	resolver := paths.WithStrategy(func() (string, error) { panic("no storage mounted") })
	service := NewService(resolver, new(MockRenderer), zap.NewNop())

	var calls atomic.Int32
	done := make(chan GenerationResult, 1)
	service.GenerateAsync(exampleRequest("report.pdf"), func(r GenerationResult) {
		calls.Add(1)
		done <- r
	})

	select {
	case r := <-done:
		assert.False(t, r.Success)
		assert.Regexp(t, `^Path Error: `, r.Message)
	case <-time.After(5 * time.Second):
		t.Fatal("callback was not invoked")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateAsyncReturnsBeforeCallback(t *testing.T) {
	dir := t.TempDir()
	renderer := &blockingRenderer{release: make(chan struct{})}
	service := NewService(paths.WithStrategy(func() (string, error) { return dir, nil }), renderer, zap.NewNop())

	var called atomic.Bool
	done := make(chan GenerationResult, 1)

	service.GenerateAsync(exampleRequest("good_report.pdf"), func(r GenerationResult) {
		called.Store(true)
		done <- r
	})

	assert.False(t, called.Load(), "callback fired before GenerateAsync returned")
	close(renderer.release)

	select {
	case r := <-done:
		assert.True(t, r.Success)
		assert.Regexp(t, `Saved to: .*good_report.*`, r.Message)
	case <-time.After(5 * time.Second):
		t.Fatal("callback was not invoked")
	}
}

func TestGenerateAsyncDeliversFailures(t *testing.T) {
	dir := t.TempDir()
	service := NewService(paths.WithStrategy(func() (string, error) { return dir, nil }), panickingRenderer{}, zap.NewNop())

	var calls atomic.Int32
	done := make(chan GenerationResult, 1)
	service.GenerateAsync(exampleRequest("report.pdf"), func(r GenerationResult) {
		calls.Add(1)
		done <- r
	})

	select {
	case r := <-done:
		assert.False(t, r.Success)
		assert.Contains(t, r.Message, "engine exploded")
	case <-time.After(5 * time.Second):
		t.Fatal("callback was not invoked")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateAsyncWithoutCallback(t *testing.T) {
	service, dir := uncompressedService(t)

	service.GenerateAsync(exampleRequest("no_callback.pdf"), nil)

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(filepath.Join(dir, "no_callback.pdf"))
		return err == nil && bytes.Contains(data, []byte("%%EOF"))
	}, 5*time.Second, 10*time.Millisecond)
}

func TestGenerateAsyncConcurrentCalls(t *testing.T) {
	service, _ := uncompressedService(t)

	var wg sync.WaitGroup
	results := make(chan GenerationResult, 5)
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf"} {
		wg.Add(1)
		service.GenerateAsync(exampleRequest(name), func(r GenerationResult) {
			results <- r
			wg.Done()
		})
	}
	wg.Wait()
	close(results)

	for r := range results {
		assert.True(t, r.Success, r.Message)
	}
}

func TestExportTable(t *testing.T) {
	service, _ := uncompressedService(t)

	var buf bytes.Buffer
	require.NoError(t, service.ExportTable(exampleRequest("x"), ExportFormatCSV, &buf))
	assert.Equal(t, "SUBJECT,AVG,COEFF,WEIGHTED\n"+
		"Math,15.00,4,60.00\n"+
		"Physics,12.50,3,37.50\n"+
		",TOTALS,7,97.50\n", buf.String())

	buf.Reset()
	require.NoError(t, service.ExportTable(exampleRequest("x"), ExportFormatXLSX, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))

	assert.Error(t, service.ExportTable(exampleRequest("x"), ExportFormat("ods"), &buf))
}
