package answer

import (
	"fmt"
	"strings"

	"github.com/atenalab/quizrag/internal/quiz"
)

// MinGroundedContext is the minimum context length, in characters, for the
// grounded prompt to be worth using. Below it the context carries too little
// signal and a reasoning-only prompt works better.
const MinGroundedContext = 50

// SystemInstruction forbids the model from returning anything other than a
// single answer letter.
const SystemInstruction = "Sei un esperto che risponde a quiz a risposta multipla. " +
	"Rispondi SOLO con una singola lettera: A, B, C o D. " +
	"Non aggiungere spiegazioni, punteggiatura o altro testo."

// AssemblePrompt builds the user prompt for a question. With enough context
// the prompt grounds the answer in the retrieved course material; otherwise
// it explicitly states that no course material was found and asks for
// logical inference over the options.
func AssemblePrompt(q quiz.Question, contextText string) string {
	var b strings.Builder

	grounded := len(contextText) >= MinGroundedContext

	if grounded {
		b.WriteString("Rispondi alla domanda usando il materiale del corso riportato sotto. ")
		b.WriteString("Se il materiale non è conclusivo, usa il ragionamento logico.\n\n")
		b.WriteString("# Materiale del corso\n\n")
		b.WriteString(contextText)
		b.WriteString("\n\n")
	} else {
		b.WriteString("Non è stato trovato materiale del corso pertinente per questa domanda. ")
		b.WriteString("Rispondi usando il ragionamento logico e le conoscenze generali, ")
		b.WriteString("scegliendo l'opzione più plausibile.\n\n")
	}

	b.WriteString("# Domanda\n\n")
	b.WriteString(q.Text)
	b.WriteString("\n\n# Opzioni\n\n")
	for _, key := range quiz.OptionKeys {
		if text := strings.TrimSpace(q.Options[key]); text != "" {
			b.WriteString(fmt.Sprintf("%s) %s\n", key, text))
		}
	}
	b.WriteString("\nRispondi con una sola lettera (A, B, C o D).")

	return b.String()
}
