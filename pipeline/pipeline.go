package pipeline

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/filipv1/pracovni-poloha2/config"
	"github.com/filipv1/pracovni-poloha2/registry"
)

// Pipeline runs the two-stage external analysis for uploaded jobs.
// Stage 1 is the pose analyzer producing the annotated video and the
// intermediate CSV; stage 2 is the Excel report generator consuming
// that CSV. Each job runs on its own goroutine and reports back into
// the registry, so a long analysis never blocks uploads or polls.
type Pipeline struct {
	registry *registry.Registry
	cfg      *config.Config
}

// NewPipeline creates the output directory and returns a Pipeline
func NewPipeline(reg *registry.Registry, cfg *config.Config) (*Pipeline, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Pipeline{registry: reg, cfg: cfg}, nil
}

// Start transitions the job to processing and launches the pipeline in
// the background. Only an uploaded job can be started, which rejects
// duplicate pipeline runs for the same job id.
func (p *Pipeline) Start(jobID string) error {
	job, err := p.registry.MarkProcessing(jobID, "Starting ergonomic analysis...")
	if err != nil {
		return err
	}

	log.Printf("Processing started for job %s (%s)", jobID, job.OriginalName)
	go p.run(job)
	return nil
}

// run executes both stages for one job. Never called on the request path.
func (p *Pipeline) run(job registry.Job) {
	stem := strings.TrimSuffix(job.OriginalName, filepath.Ext(job.OriginalName))
	outputVideo := filepath.Join(p.cfg.OutputDir, fmt.Sprintf("%s_%s_analyzed.mp4", job.ID, stem))
	outputCSV := filepath.Join(p.cfg.OutputDir, fmt.Sprintf("%s_%s_analyzed.csv", job.ID, stem))
	outputExcel := filepath.Join(p.cfg.OutputDir, fmt.Sprintf("%s_%s_report.xlsx", job.ID, stem))

	p.registry.SetProgress(job.ID, 20, "Running pose analysis...")

	args := []string{
		job.StoredPath, outputVideo,
		"--model-complexity", strconv.Itoa(p.cfg.ModelComplexity),
		"--csv-export", "--no-progress",
	}
	if err := p.runCommand(p.cfg.AnalyzerBin, p.cfg.AnalyzerScript, args); err != nil {
		p.registry.Fail(job.ID, fmt.Sprintf("Video analysis failed: %v", err))
		log.Printf("Processing error for job %s: %v", job.ID, err)
		return
	}

	p.registry.SetProgress(job.ID, 60, "Analysis complete, generating report...")

	fps := p.probeFrameRate(job.StoredPath)

	args = []string{
		outputCSV, outputExcel,
		"--fps", strconv.FormatFloat(fps, 'f', -1, 64),
	}
	if err := p.runCommand(p.cfg.ReportBin, p.cfg.ReportScript, args); err != nil {
		// Stage 1 output stays on disk; only the job record goes to error.
		p.registry.Fail(job.ID, fmt.Sprintf("Report generation failed: %v", err))
		log.Printf("Processing error for job %s: %v", job.ID, err)
		return
	}

	p.registry.Complete(job.ID, "Analysis completed successfully", registry.Outputs{
		Video:  outputVideo,
		Report: outputExcel,
	})

	log.Printf("Processing completed for job %s: video=%s, report=%s", job.ID, outputVideo, outputExcel)
}

// runCommand invokes one external tool and folds its diagnostic output
// into the returned error on a non-zero exit
func (p *Pipeline) runCommand(bin, script string, args []string) error {
	argv := args
	if script != "" {
		argv = append([]string{script}, args...)
	}

	cmd := exec.Command(bin, argv...)
	cmd.Env = append(os.Environ(), "PYTHONIOENCODING=utf-8")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s exited with error: %v\nSTDERR: %s\nSTDOUT: %s",
			bin, err, strings.TrimSpace(stderr.String()), strings.TrimSpace(stdout.String()))
	}
	return nil
}

// probeFrameRate measures the input video frame rate with ffprobe.
// Probe failure is not fatal; the configured default applies.
func (p *Pipeline) probeFrameRate(inputPath string) float64 {
	cmd := exec.Command(p.cfg.FFProbeBin,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=avg_frame_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath)

	out, err := cmd.Output()
	if err != nil {
		log.Printf("Frame rate probe failed for %s, using default %.1f fps: %v", inputPath, p.cfg.DefaultFPS, err)
		return p.cfg.DefaultFPS
	}

	fps, err := parseFrameRate(strings.TrimSpace(string(out)))
	if err != nil {
		log.Printf("Could not parse frame rate %q, using default %.1f fps", strings.TrimSpace(string(out)), p.cfg.DefaultFPS)
		return p.cfg.DefaultFPS
	}
	return fps
}

// parseFrameRate handles ffprobe rational output like "30000/1001" or "25/1"
func parseFrameRate(value string) (float64, error) {
	if num, den, found := strings.Cut(value, "/"); found {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, err
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil {
			return 0, err
		}
		if d == 0 {
			return 0, fmt.Errorf("zero denominator in frame rate %q", value)
		}
		return n / d, nil
	}
	return strconv.ParseFloat(value, 64)
}
