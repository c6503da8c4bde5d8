package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/gravsim/internal/dynamo"
)

type BodyState struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VX   float64 `json:"vx"`
	VY   float64 `json:"vy"`
}

type FrameData struct {
	Step   int         `json:"step"`
	Time   float64     `json:"time"`
	Bodies []BodyState `json:"bodies"`
}

type ExportData struct {
	Run    *RunMetadata `json:"run"`
	Frames []FrameData  `json:"frames"`
}

// ExportJSON writes a run's metadata and trajectory as one indented document.
func ExportJSON(w io.Writer, meta *RunMetadata, frames []dynamo.Frame) error {
	data := ExportData{
		Run:    meta,
		Frames: make([]FrameData, len(frames)),
	}

	for i, f := range frames {
		fd := FrameData{Step: f.Step, Time: f.Time, Bodies: make([]BodyState, len(f.Bodies))}
		for j, b := range f.Bodies {
			fd.Bodies[j] = BodyState{
				Name: b.Name,
				X:    b.Position.X,
				Y:    b.Position.Y,
				VX:   b.Velocity.X,
				VY:   b.Velocity.Y,
			}
		}
		data.Frames[i] = fd
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
