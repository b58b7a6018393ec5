package narration

import (
	"encoding/json"
	"fmt"

	"pillbuddy-backend/internal/models"
)

const persona = "You are PillBuddy, an AI partner that helps visually impaired users take their medication safely. Speak in a very friendly, conversational tone that is easy to listen to as audio. Do not use markdown, headings, or bullet characters."

func summaryPrompt(records []models.DrugRecord) string {
	data, _ := json.Marshal(records)
	return fmt.Sprintf(`%s

[OFFICIAL DATABASE RECORDS]
%s

Based 100%% on the records above and nothing else, summarize the four key facts about this medication: 1. its name, 2. what it is for, 3. how to take it, 4. the most important warning.

End with exactly this sentence: %q`, persona, data, ClosingSentence)
}

func fallbackPrompt(name string) string {
	return fmt.Sprintf(`%s

The official drug database has no record for %q.

Instead, using what you generally know about %q, summarize the three key facts: 1. what it is for, 2. how to take it, 3. the most important warning. After the summary, add exactly this sentence: %q

End with exactly this sentence: %q`, persona, name, name, FallbackDisclaimer, ClosingSentence)
}

func answerPrompt(name, question string, records []models.DrugRecord) string {
	data, _ := json.Marshal(records)
	return fmt.Sprintf(`%s

[OFFICIAL DATABASE RECORDS]
%s

The user is looking at the medication %q and asked: %q

Answer based 100%% on the records above. Never invent anything that is not in the records. If the records do not cover the question, say: "That is not covered by the official records, so I cannot give you a precise answer. Please consult a doctor or pharmacist."

End with exactly this sentence: %q`, persona, data, name, question, ClosingSentence)
}

func answerFallbackPrompt(name, question string) string {
	return fmt.Sprintf(`%s

The user is looking at the medication %q, but the official drug database has no additional record for it.
The user asked: %q

Answer using what you generally know, and include exactly this sentence in your answer: %q

End with exactly this sentence: %q`, persona, name, question, FallbackDisclaimer, ClosingSentence)
}
