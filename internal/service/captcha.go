package service

import (
	"masterdata-web/internal/models"
	"math/rand"
	"sync"
	"time"
)

// CaptchaGenerator draws subtraction challenges with operands in [1, max].
type CaptchaGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	max int
}

func NewCaptchaGenerator(max int, seed int64) *CaptchaGenerator {
	if max < 2 {
		max = 2
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &CaptchaGenerator{rnd: rand.New(rand.NewSource(seed)), max: max}
}

// Next returns a fresh challenge whose answer is never negative.
func (g *CaptchaGenerator) Next() models.Captcha {
	g.mu.Lock()
	defer g.mu.Unlock()

	a := g.rnd.Intn(g.max) + 1
	b := g.rnd.Intn(g.max) + 1
	if b > a {
		a, b = b, a
	}
	return models.Captcha{A: a, B: b}
}
