package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/liquidsim/internal/sim"
)

type ExportData struct {
	Scene    string             `json:"scene"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	Emitted  int                `json:"emitted"`
	Frames   []sim.Frame        `json:"frames"`
	Metrics  map[string]float64 `json:"metrics"`
	Final    *Snapshot          `json:"final,omitempty"`
}

func NewExportData(scene string, dt, duration float64, result *sim.Result, final *Snapshot) ExportData {
	return ExportData{
		Scene:    scene,
		Dt:       dt,
		Duration: duration,
		Steps:    result.StepsTaken,
		Emitted:  result.Emitted,
		Frames:   result.Frames,
		Metrics:  result.Metrics,
		Final:    final,
	}
}

func ExportJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, data)
}

// ExportFramesCSV writes frames with a header row.
func ExportFramesCSV(w io.Writer, frames []sim.Frame) error {
	return gocsv.Marshal(&frames, w)
}

// FrameLog appends frames to a CSV file as they are produced.
type FrameLog struct {
	file          *os.File
	headerWritten bool
}

func NewFrameLog(path string) (*FrameLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating frame log: %w", err)
	}
	return &FrameLog{file: f}, nil
}

func (l *FrameLog) Write(frame sim.Frame) error {
	if l == nil {
		return nil
	}

	records := []sim.Frame{frame}

	if !l.headerWritten {
		if err := gocsv.Marshal(records, l.file); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
		l.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, l.file); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func (l *FrameLog) Close() error {
	if l == nil {
		return nil
	}
	return l.file.Close()
}
