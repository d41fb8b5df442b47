package cli

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/banrakshak/fra-ocr-service/internal/artifacts"
	"github.com/banrakshak/fra-ocr-service/internal/landcover"
	"github.com/banrakshak/fra-ocr-service/internal/models"
	"github.com/banrakshak/fra-ocr-service/internal/services"
)

type fakeParser struct {
	parsed []string
}

func (f *fakeParser) EngineName() string { return "fake" }

func (f *fakeParser) ParseFile(_ context.Context, path string) *models.DocumentAnalysis {
	f.parsed = append(f.parsed, path)
	if strings.Contains(filepath.Base(path), "bad") {
		return models.FailedAnalysis(errors.New("unreadable scan"))
	}
	return &models.DocumentAnalysis{
		DocumentTitle:      "Title to Forest Land under Occupation",
		ExtractedFields:    map[string]string{"holder_name": "Ramesh Kumar", "district": "Mandla"},
		FullText:           "FORM 'A' title to forest land holder Ramesh Kumar",
		OCRConfidence:      0.82,
		ExtractionVariants: 3,
		BestVariant:        "otsu",
		ProcessingStatus:   models.StatusSuccess,
	}
}

type fakeClassifier struct {
	err error
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (*models.DocumentClassification, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.DocumentClassification{
		DocumentType:    "FRA Title Certificate",
		ConfidenceLevel: models.ConfidenceHigh,
		ConfidenceScore: 91,
		Reasoning:       "mentions title to forest land",
	}, nil
}

type fakeSynthesizer struct {
	gotDoc, gotLandCover string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, doc, landCover string) (*models.FRAClaimantProfile, string, error) {
	f.gotDoc, f.gotLandCover = doc, landCover
	return &models.FRAClaimantProfile{
		HolderName:     "Ramesh Kumar",
		Dependents:     []string{},
		SocialCategory: models.ScheduledTribe,
		LandUsePrimary: "Agriculture",
	}, "{}", nil
}

type fakeRecommender struct {
	got *models.FRAClaimantProfile
}

func (f *fakeRecommender) Recommend(_ context.Context, p *models.FRAClaimantProfile) (*models.SchemeReport, error) {
	f.got = p
	return &models.SchemeReport{
		Success:      true,
		UserReport:   "## Recommended schemes\nPM-KISAN",
		ClaimantName: p.HolderName,
	}, nil
}

type fakeSegmenter struct{}

func (fakeSegmenter) Segment(context.Context, image.Image) (*landcover.Distribution, error) {
	classes := []uint8{uint8(landcover.Agriculture), uint8(landcover.Agriculture), uint8(landcover.Agriculture), uint8(landcover.Water)}
	return landcover.FromClassMap(classes)
}

type testEnv struct {
	dir         string
	parser      *fakeParser
	classifier  *fakeClassifier
	synthesizer *fakeSynthesizer
	recommender *fakeRecommender
}

// setupTestServices installs fake services writing under a temp dir and
// resets every flag once the test is done.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		dir:         t.TempDir(),
		parser:      &fakeParser{},
		classifier:  &fakeClassifier{},
		synthesizer: &fakeSynthesizer{},
		recommender: &fakeRecommender{},
	}
	SetServices(&Services{
		Parser:      env.parser,
		Classifier:  env.classifier,
		Synthesizer: env.synthesizer,
		Recommender: env.recommender,
		Segmenter:   fakeSegmenter{},
		Artifacts:   artifacts.NewStore(env.dir),
		Validator:   services.NewProfileValidator(),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(func() {
		SetServices(nil)
		resetFlags(rootCmd)
	})
	return env
}

func resetFlags(cmd *cobra.Command) {
	for _, c := range cmd.Commands() {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"version", "parse", "batch", "watch", "classify", "profile", "schemes", "landcover"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCmd(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
	assert.Equal(t, "Print the version number", versionCmd.Short)

	original := version
	version = "test-1.2.3"
	defer func() { version = original }()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "fractl version test-1.2.3")
}

func TestCommands_RequireExactlyOneArg(t *testing.T) {
	for _, name := range []string{"parse", "batch", "watch", "classify", "landcover"} {
		t.Run(name, func(t *testing.T) {
			setupTestServices(t)
			_, err := execute(t, name)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "accepts 1 arg(s)")
		})
	}
}

func TestParseCmd_WritesRunFiles(t *testing.T) {
	env := setupTestServices(t)
	img := writeFile(t, t.TempDir(), "title.png", "scan")

	out, err := execute(t, "parse", img)
	require.NoError(t, err)
	assert.Contains(t, out, "Title to Forest Land under Occupation")
	assert.Contains(t, out, "Ramesh Kumar")
	assert.Contains(t, out, "FRA Title Certificate")
	assert.Equal(t, []string{img}, env.parser.parsed)

	runs, err := filepath.Glob(filepath.Join(env.dir, "document_analysis_*"))
	require.NoError(t, err)
	require.Len(t, runs, 1)

	var combined CombinedResult
	require.NoError(t, artifacts.LoadJSON(filepath.Join(runs[0], CombinedFile), &combined))
	assert.Equal(t, img, combined.ImagePath)
	assert.Equal(t, runs[0], combined.OutputDirectory)
	require.NotNil(t, combined.Classification)
	assert.Equal(t, "FRA Title Certificate", combined.Classification.DocumentType)
	assert.FileExists(t, filepath.Join(runs[0], ExtractionFile))
	assert.FileExists(t, filepath.Join(runs[0], ClassificationFile))
}

func TestParseCmd_WithoutClassification(t *testing.T) {
	env := setupTestServices(t)
	img := writeFile(t, t.TempDir(), "title.png", "scan")

	out, err := execute(t, "parse", "--classify=false", "--json", img)
	require.NoError(t, err)
	assert.Contains(t, out, `"image_path"`)
	assert.NotContains(t, out, `"classification"`)

	runs, _ := filepath.Glob(filepath.Join(env.dir, "document_analysis_*"))
	require.Len(t, runs, 1)
	assert.NoFileExists(t, filepath.Join(runs[0], ClassificationFile))
}

func TestParseCmd_ClassifierFailureKeepsExtraction(t *testing.T) {
	env := setupTestServices(t)
	env.classifier.err = errors.New("quota exceeded")
	img := writeFile(t, t.TempDir(), "title.png", "scan")

	out, err := execute(t, "parse", img)
	require.NoError(t, err)
	assert.Contains(t, out, "Ramesh Kumar")
	assert.NotContains(t, out, "Document type:")
}

func TestParseCmd_Errors(t *testing.T) {
	t.Run("failed analysis", func(t *testing.T) {
		setupTestServices(t)
		img := writeFile(t, t.TempDir(), "bad.png", "scan")
		_, err := execute(t, "parse", img)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unreadable scan")
	})

	t.Run("no OCR", func(t *testing.T) {
		setupTestServices(t)
		svc.Parser = nil
		_, err := execute(t, "parse", "title.png")
		assert.ErrorIs(t, err, errNoOCR)
	})
}

func TestBatchCmd(t *testing.T) {
	env := setupTestServices(t)
	in := t.TempDir()
	writeFile(t, in, "a.png", "scan")
	writeFile(t, in, "bad.jpg", "scan")
	writeFile(t, in, "notes.txt", "ignored")
	xlsx := filepath.Join(t.TempDir(), "out.xlsx")

	out, err := execute(t, "batch", "--xlsx", xlsx, in)
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 2 files, 1 failed")
	assert.Len(t, env.parser.parsed, 2)

	runs, _ := filepath.Glob(filepath.Join(env.dir, "batch_analysis_*"))
	require.Len(t, runs, 1)
	var results BatchResults
	require.NoError(t, artifacts.LoadJSON(filepath.Join(runs[0], BatchFile), &results))
	require.Len(t, results.Results, 2)
	assert.Equal(t, filepath.Join(in, "a.png"), results.Results[0].File)
	assert.Empty(t, results.Results[0].Error)
	assert.NotNil(t, results.Results[0].Classification)
	assert.Contains(t, results.Results[1].Error, "unreadable scan")

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Analyses")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestBatchCmd_NoImages(t *testing.T) {
	setupTestServices(t)
	in := t.TempDir()
	writeFile(t, in, "notes.txt", "ignored")

	_, err := execute(t, "batch", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image files found")
}

func TestClassifyCmd(t *testing.T) {
	setupTestServices(t)
	text := writeFile(t, t.TempDir(), "doc.txt", "title to forest land")

	out, err := execute(t, "classify", text)
	require.NoError(t, err)
	assert.Contains(t, out, "Document type: FRA Title Certificate")
	assert.Contains(t, out, "Confidence: HIGH (91/100)")
}

func TestClassifyCmd_Stdin(t *testing.T) {
	setupTestServices(t)
	rootCmd.SetIn(strings.NewReader("title to forest land"))
	defer rootCmd.SetIn(nil)

	out, err := execute(t, "classify", "--json", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"document_type": "FRA Title Certificate"`)
}

func TestClassifyCmd_EmptyText(t *testing.T) {
	setupTestServices(t)
	text := writeFile(t, t.TempDir(), "empty.txt", "  \n")

	_, err := execute(t, "classify", text)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text to classify")
}

func TestLandcoverCmd(t *testing.T) {
	env := setupTestServices(t)
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := writeFile(t, t.TempDir(), "plot7.png", buf.String())

	out, err := execute(t, "landcover", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Agriculture land: 75.00%")
	assert.Contains(t, out, "Water: 25.00%")
	assert.Contains(t, out, `"plot7"`)

	saved, err := artifacts.NewStore(env.dir).LandCoverText("plot7")
	require.NoError(t, err)
	assert.Contains(t, saved, "Water: 25.00%")
}

func TestProfileCmd(t *testing.T) {
	env := setupTestServices(t)
	dir := t.TempDir()
	doc := writeFile(t, dir, "combined_results.json", `{"extraction":{"document_title":"Title"}}`)
	lc := writeFile(t, dir, "lc.txt", "Agriculture land: 75.00%\nWater: 25.00%\n")

	out, err := execute(t, "profile", "--document", doc, "--landcover", lc)
	require.NoError(t, err)
	assert.Contains(t, out, `"holder_name": "Ramesh Kumar"`)
	assert.Contains(t, out, "Profile saved to")
	assert.Contains(t, env.synthesizer.gotDoc, "document_title")
	assert.Contains(t, env.synthesizer.gotLandCover, "Water: 25.00%")

	saved, err := artifacts.NewStore(env.dir).LatestProfile()
	require.NoError(t, err)
	assert.Equal(t, "Ramesh Kumar", saved.HolderName)
}

func TestProfileCmd_LandCoverArtifact(t *testing.T) {
	env := setupTestServices(t)
	_, err := artifacts.NewStore(env.dir).SaveLandCoverText("plot7", "Water: 5.00%\n")
	require.NoError(t, err)
	doc := writeFile(t, t.TempDir(), "doc.json", `{}`)

	_, err = execute(t, "profile", "--document", doc, "--landcover-artifact", "plot7")
	require.NoError(t, err)
	assert.Equal(t, "Water: 5.00%\n", env.synthesizer.gotLandCover)
}

func TestProfileCmd_RequiresDocument(t *testing.T) {
	setupTestServices(t)
	_, err := execute(t, "profile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"document" not set`)
}

func TestSchemesCmd_List(t *testing.T) {
	setupTestServices(t)
	out, err := execute(t, "schemes", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "PM-KISAN")
	assert.Contains(t, out, "https://nrega.nic.in/")
}

func TestSchemesCmd_LatestProfile(t *testing.T) {
	env := setupTestServices(t)
	_, err := execute(t, "schemes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no claimant profile found")

	_, err = artifacts.NewStore(env.dir).SaveProfile(&models.FRAClaimantProfile{HolderName: "Sita Bai", Dependents: []string{}})
	require.NoError(t, err)

	out, err := execute(t, "schemes")
	require.NoError(t, err)
	assert.Contains(t, out, "## Recommended schemes")
	require.NotNil(t, env.recommender.got)
	assert.Equal(t, "Sita Bai", env.recommender.got.HolderName)

	matches, _ := filepath.Glob(filepath.Join(env.dir, "scheme_analysis_sita_bai_*.json"))
	assert.Len(t, matches, 1)
}

func TestSchemesCmd_ProfileFile(t *testing.T) {
	env := setupTestServices(t)

	bad := writeFile(t, t.TempDir(), "bad.json", `{"holder_name":"X","social_category":"Unknown"}`)
	_, err := execute(t, "schemes", "--profile", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid social_category")

	good := writeFile(t, t.TempDir(), "good.json", `{"holder_name":"Ramesh Kumar","social_category":"Scheduled Tribe"}`)
	_, err = execute(t, "schemes", "--profile", good, "--json")
	require.NoError(t, err)
	assert.Equal(t, "Ramesh Kumar", env.recommender.got.HolderName)
}
