package director

// Plan is the timing and look of every scene in one video
type Plan struct {
	Version       string  `yaml:"version"`
	FPS           int     `yaml:"fps"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	TotalDuration float64 `yaml:"total_duration"` // seconds
	Slides        []Slide `yaml:"slides"`
}

// Slide is one scene card
type Slide struct {
	ID         int     `yaml:"id"`
	Text       string  `yaml:"text"`
	Duration   float64 `yaml:"duration"`   // Nominal seconds, total/N
	Frames     int     `yaml:"frames"`     // Encoded frames at Plan.FPS
	Background string  `yaml:"background"` // #rrggbb
}

// TotalFrames sums the encoded frames of all slides
func (p *Plan) TotalFrames() int {
	n := 0
	for _, s := range p.Slides {
		n += s.Frames
	}
	return n
}
