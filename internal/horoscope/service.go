package horoscope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tarotfutura/futura/internal/i18n"
	"github.com/tarotfutura/futura/internal/oracle"
)

// DayLayout is how days are keyed in the cache.
const DayLayout = "2006-01-02"

// Cache stores one prediction per sign, day and language.
type Cache interface {
	Horoscope(ctx context.Context, sign, day string, lang i18n.Lang) (text string, found bool, err error)
	// SaveHoroscope keeps the first prediction stored for a key and
	// silently ignores later ones.
	SaveHoroscope(ctx context.Context, sign, day string, lang i18n.Lang, text string) error
}

type Horoscope struct {
	Sign       SignView  `json:"sign"`
	Day        string    `json:"day"`
	Language   i18n.Lang `json:"language"`
	Prediction string    `json:"prediction"`
}

type Service struct {
	cache   Cache
	client  oracle.Client
	timeout time.Duration
	logger  *slog.Logger
	flight  singleflight.Group
	now     func() time.Time
}

func NewService(cache Cache, client oracle.Client, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{cache: cache, client: client, timeout: timeout, logger: logger, now: time.Now}
}

// WithClock replaces the clock used to pick the day. For tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Daily returns today's prediction for signID (UTC day), generating and
// storing it on first request.
func (s *Service) Daily(ctx context.Context, signID string, lang i18n.Lang) (Horoscope, error) {
	sign, err := Lookup(signID)
	if err != nil {
		return Horoscope{}, err
	}
	day := s.now().UTC().Format(DayLayout)
	h := Horoscope{Sign: sign.Localize(lang), Day: day, Language: lang}

	text, found, err := s.cache.Horoscope(ctx, sign.ID, day, lang)
	if err != nil {
		return Horoscope{}, fmt.Errorf("reading horoscope cache: %w", err)
	}
	if found {
		h.Prediction = text
		return h, nil
	}

	key := sign.ID + "/" + day + "/" + string(lang)
	ch := s.flight.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		text, err := s.client.Complete(callCtx, buildPrompt(sign, lang))
		if err != nil {
			if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, oracle.ErrTimeout) {
				err = fmt.Errorf("%w: %v", oracle.ErrTimeout, err)
			}
			s.logger.Error("generating horoscope", "sign", sign.ID, "day", day, "error", err)
			return "", err
		}
		if err := s.cache.SaveHoroscope(callCtx, sign.ID, day, lang, text); err != nil {
			s.logger.Error("storing horoscope", "sign", sign.ID, "day", day, "error", err)
			return "", fmt.Errorf("storing horoscope: %w", err)
		}
		// Another process may have stored first; serve what is stored.
		stored, found, err := s.cache.Horoscope(callCtx, sign.ID, day, lang)
		if err == nil && found {
			text = stored
		}
		return text, nil
	})

	select {
	case <-ctx.Done():
		return Horoscope{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Horoscope{}, res.Err
		}
		h.Prediction = res.Val.(string)
		return h, nil
	}
}

func buildPrompt(s Sign, lang i18n.Lang) oracle.Prompt {
	if lang == i18n.EN {
		return oracle.Prompt{
			System: `You are an expert astrologer who writes daily horoscopes based on planetary positions and constellations.
Write unique, personal and deep predictions for each zodiac sign.
Cover love, work, health and the energy of the day.
Use a mystical but professional tone. The prediction should be 3-4 paragraphs.`,
			User: fmt.Sprintf(`Write today's horoscope for %s (%s, %s) considering:
- the current planetary positions
- the visible constellations
- today's astrological transits
- the lunar influence
Give a complete prediction covering love, work, health and overall energy.`,
				s.Name.EN, s.Element.EN, s.DateRange(lang)),
		}
	}
	return oracle.Prompt{
		System: `Eres un astrólogo experto que crea horóscopos diarios basados en las posiciones planetarias y constelaciones.
Genera predicciones únicas, personalizadas y profundas para cada signo zodiacal.
Incluye aspectos de amor, trabajo, salud y energía del día.
Usa un tono místico pero profesional. La predicción debe ser de 3-4 párrafos.`,
		User: fmt.Sprintf(`Genera el horóscopo diario para %s (%s, %s) considerando:
- Las posiciones planetarias actuales
- Las constelaciones visibles
- Los tránsitos astrológicos del día
- La influencia lunar
Proporciona una predicción completa que cubra amor, trabajo, salud y energía general.`,
			s.Name.ES, s.Element.ES, s.DateRange(i18n.ES)),
	}
}
