package reading

import (
	"fmt"
	"strings"

	"github.com/tarotfutura/futura/internal/i18n"
	"github.com/tarotfutura/futura/internal/oracle"
	"github.com/tarotfutura/futura/internal/tarot"
)

// Headers are the section titles the oracle is told to use, by language.
var Headers = map[i18n.Lang][3]string{
	i18n.ES: {"PASADO", "PRESENTE", "FUTURO"},
	i18n.EN: {"PAST", "PRESENT", "FUTURE"},
}

var systemPrompt = i18n.Text{
	ES: `Eres un místico lector de tarot con profundo conocimiento esotérico.
Tu misión es proporcionar lecturas personalizadas, profundas y significativas basadas en las cartas del tarot.
Habla con un tono místico pero accesible, usando metáforas y simbolismo.
Sé específico en tus respuestas y conecta las cartas con la pregunta del consultante.

IMPORTANTE: Estructura tu respuesta en TRES secciones claramente marcadas:
- PASADO: (análisis de la primera carta y su relación con el pasado del consultante)
- PRESENTE: (análisis de la segunda carta y su situación actual)
- FUTURO: (análisis de la tercera carta y las proyecciones hacia adelante)

Cada sección debe comenzar exactamente con su título en mayúsculas seguido de dos puntos.`,
	EN: `You are a mystic tarot reader with deep esoteric knowledge.
Your mission is to give personal, deep and meaningful readings based on the tarot cards.
Speak in a mystical but approachable tone, using metaphor and symbolism.
Be specific and connect the cards to the seeker's question.

IMPORTANT: Structure your answer in THREE clearly marked sections:
- PAST: (the first card and its relation to the seeker's past)
- PRESENT: (the second card and the current situation)
- FUTURE: (the third card and what lies ahead)

Each section must start exactly with its title in capitals followed by a colon.`,
}

// BuildPrompt renders the oracle prompt for a normalized request.
func BuildPrompt(r Request) oracle.Prompt {
	lang := r.Language
	h := Headers[lang]
	if lang != i18n.EN {
		lang, h = i18n.ES, Headers[i18n.ES]
	}

	var cards strings.Builder
	for i, dc := range r.Spread {
		if i > 0 {
			cards.WriteString("\n\n")
		}
		fmt.Fprintf(&cards, "%s: %s\n%s: %s\n%s: %s",
			h[i], dc.Card.DisplayName(lang),
			label(lang, "Significado", "Meaning"), dc.Card.Meaning.In(lang),
			label(lang, "Lectura", "Reading"), dc.Card.Reading.In(lang),
		)
	}

	name := func(p tarot.Position) string {
		for _, dc := range r.Spread {
			if dc.Position == p {
				return dc.Card.DisplayName(lang)
			}
		}
		return ""
	}

	var user string
	if lang == i18n.EN {
		user = fmt.Sprintf(`The traveler %s seeks answers about %s.

Their question is: "%s"

The revealed cards are:
%s

Give a reading split into three clearly marked sections:

PAST: Explain how %s reveals the roots of the situation. (100-120 words)

PRESENT: Analyse how %s reflects the current moment, its challenges and chances. (100-120 words)

FUTURE: Interpret how %s points to what is coming. (100-120 words)

Answer the question "%s" directly in every section.`,
			r.UserName, r.Focus.Label(lang), r.Question, cards.String(),
			name(tarot.Past), name(tarot.Present), name(tarot.Future), r.Question)
	} else {
		user = fmt.Sprintf(`El viajero %s busca respuestas sobre %s.

Su pregunta es: "%s"

Las cartas reveladas son:
%s

Proporciona una lectura dividida en tres secciones claramente identificadas:

PASADO: Explica cómo la carta %s revela las raíces y antecedentes de su situación. (100-120 palabras)

PRESENTE: Analiza cómo la carta %s refleja su momento actual y los desafíos u oportunidades presentes. (100-120 palabras)

FUTURO: Interpreta cómo la carta %s indica las tendencias y posibilidades que se aproximan. (100-120 palabras)

Responde directamente a su pregunta "%s" en cada sección.`,
			r.UserName, r.Focus.Label(lang), r.Question, cards.String(),
			name(tarot.Past), name(tarot.Present), name(tarot.Future), r.Question)
	}

	return oracle.Prompt{System: systemPrompt.In(lang), User: user}
}

func label(lang i18n.Lang, es, en string) string {
	if lang == i18n.EN {
		return en
	}
	return es
}
