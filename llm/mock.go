package llm

import (
	"context"
	"math/rand"
	"regexp"
	"time"

	"github.com/abadojack/whatlanggo"

	"colosseum/domain"
)

// positiveKeywords are leisure topics that make every persona more likely
// to join in.
var positiveKeywords = []string{
	"주말", "여행", "액티비티", "전시", "추천", "놀", "휴식", "공원", "카페", "산책", "영화",
}

var personaTriggers = map[string]*regexp.Regexp{
	"leo":   regexp.MustCompile(`가보|하자|하니|어때|어딜|뭐하`),
	"muse":  regexp.MustCompile(`전시|예술|음악|영감|감성`),
	"alpha": regexp.MustCompile(`계획|비용|비싸|효율|분석|장단점|추천|일정|예산|항공|가격`),
}

var cannedReplies = map[string]string{
	"alpha": "아이디어 3가지를 비교해봤어. 1) 야외 피크닉: 비용 낮고 접근성 좋아. 2) 실내 전시 관람: " +
		"날씨 영향 적고 영감 상승. 3) 액티비티(클라이밍 등): 비용 중간, 체력 소모 큼. 예산과 이동 시간을 기준으로 선택해보자.",
	"muse": "햇살이 비치는 오후, 작은 전시관에서 시작해보는 건 어때? 골목의 향을 맡으며 걷다가, " +
		"분위기 좋은 카페에서 스케치 한 장. 그 하루가 오래 남을 거야.",
	"leo": "좋아! 그냥 나가서 먼저 몸을 풀자. 한강 자전거 → 클라이밍 체험 → 야시장 간식 코스, 어때? 즉흥이 최고의 계획이지!",
}

const (
	genericReplyKorean  = "흥미롭네! 그 얘기 조금만 더 해줘. 함께 아이디어를 던져볼게."
	genericReplyForeign = "Interesting! Tell me a bit more about that, I'd love to throw some ideas around."
)

// Mock is the offline generation backend. It reproduces a plausible model:
// simulated latency, a topic heuristic deciding whether the persona joins
// in, and canned persona-flavored replies.
type Mock struct {
	keywords   *KeywordMatcher
	maxChars   int
	minLatency time.Duration
	jitter     time.Duration
	randFloat  func() float64
}

type MockOption func(*Mock)

// WithMockLatency overrides the simulated latency window. Zero values make
// Generate return immediately, which tests and the tester binary rely on.
func WithMockLatency(min, jitter time.Duration) MockOption {
	return func(m *Mock) {
		m.minLatency = min
		m.jitter = jitter
	}
}

func WithMockRand(f func() float64) MockOption {
	return func(m *Mock) { m.randFloat = f }
}

func NewMock(maxChars int, opts ...MockOption) *Mock {
	keywords, err := NewKeywordMatcher(positiveKeywords)
	if err != nil {
		// The pattern list is a compile-time constant; Build only fails on
		// an empty list.
		panic(err)
	}
	if maxChars <= 0 {
		maxChars = 100
	}
	m := &Mock{
		keywords:   keywords,
		maxChars:   maxChars,
		minLatency: 500 * time.Millisecond,
		jitter:     1200 * time.Millisecond,
		randFloat:  rand.Float64,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mock) Generate(ctx context.Context, req Request) (Outcome, error) {
	if err := m.sleep(ctx); err != nil {
		return Outcome{}, err
	}

	last := req.LastMessage.Content
	if !m.shouldRespond(req.Persona.ID, last) {
		return Outcome{NoResponse: true}, nil
	}
	return Outcome{Content: domain.Truncate(m.craftReply(req.Persona.ID, last), m.maxChars)}, nil
}

func (m *Mock) sleep(ctx context.Context) error {
	latency := m.minLatency
	if m.jitter > 0 {
		latency += time.Duration(m.randFloat() * float64(m.jitter))
	}
	if latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (m *Mock) shouldRespond(personaID, lastContent string) bool {
	hasPositive := m.keywords.MatchesAny(lastContent)
	if trigger, ok := personaTriggers[personaID]; ok {
		return hasPositive || trigger.MatchString(lastContent)
	}
	return m.randFloat() > 0.6
}

func (m *Mock) craftReply(personaID, lastContent string) string {
	// The canned replies are Korean; answer generic when the trigger
	// message clearly is not.
	info := whatlanggo.Detect(lastContent)
	if info.Lang != whatlanggo.Kor && info.IsReliable() {
		return genericReplyForeign
	}
	if reply, ok := cannedReplies[personaID]; ok {
		return reply
	}
	return genericReplyKorean
}
