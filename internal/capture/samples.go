package capture

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"ai-note-taker/internal/domain"
)

var slideContents = []string{
	"• Key feature of reinforcement learning is the reward signal\n• Unlike supervised learning, no labeled examples are provided\n• Agent learns through trial and error interactions with environment\n• Policy optimization is a core concept in modern approaches",
	"• Neural networks can approximate complex functions\n• Deep learning enables end-to-end learning without feature engineering\n• Convolutional layers are effective for spatial data\n• Recurrent architectures handle sequential information",
	"• Data preprocessing is critical for model performance\n• Feature scaling improves convergence rates\n• Categorical variables require encoding strategies\n• Missing values should be handled appropriately",
}

var videoContents = []string{
	"The lecturer explained how transformer models work by using self-attention mechanisms to weigh different parts of the input sequence. This allows the model to focus on relevant information regardless of position in the sequence, which was a breakthrough compared to RNNs and LSTMs.",
	"Today's session covered gradient descent optimization algorithms. The professor described how Adam combines the benefits of AdaGrad and RMSProp, adaptively adjusting learning rates for each parameter while maintaining momentum.",
	"The key takeaway from this part of the lecture was how ensemble methods reduce variance by combining multiple models. Random Forests specifically use bagging and feature randomness to create diverse decision trees.",
}

const (
	maxSlideNumber = 20
	maxVideoNumber = 10

	slideSource = "PowerPoint Presentation"
	videoSource = "Recorded Lecture"
)

// Generator fabricates plausible lecture notes. It is safe for concurrent
// use; firings overlap when a persist outlasts the interval.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewGenerator(rng *rand.Rand, now func() time.Time) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{rng: rng, now: now}
}

// Next returns a new slide or video note stamped with the current time.
// The id is the creation time in Unix milliseconds, so two firings in the
// same millisecond share an id. The backend rejects the second create and
// that note stays local only.
func (g *Generator) Next() domain.Note {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	note := domain.Note{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		Timestamp: now,
	}

	if g.rng.IntN(2) == 0 {
		note.Type = domain.NoteTypeSlide
		note.Title = fmt.Sprintf("Lecture Slide %d", g.rng.IntN(maxSlideNumber)+1)
		note.Content = slideContents[g.rng.IntN(len(slideContents))]
		note.Source = slideSource
	} else {
		note.Type = domain.NoteTypeVideo
		note.Title = fmt.Sprintf("Video Lecture %d", g.rng.IntN(maxVideoNumber)+1)
		note.Content = videoContents[g.rng.IntN(len(videoContents))]
		note.Source = videoSource
	}
	return note
}
