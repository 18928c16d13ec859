package chat

import (
	"fmt"
	"strings"
)

// languagePack holds every language-dependent text used by the chain.
// Adding a language means adding an entry here, not new branches.
type languagePack struct {
	system        string
	systemNoRAG   string
	contextHeader string
	disclaimer    string
	fallback      string
}

var languagePacks = map[string]languagePack{
	"sk": {
		system: "Si právny asistent kancelárie %s. Odpovedaj v slovenčine, " +
			"vecne a presne. Opieraj sa o poskytnuté úryvky dokumentov a pri " +
			"citovaní uvádzaj ich označenie v hranatých zátvorkách.",
		systemNoRAG: "Si právny asistent kancelárie %s. Odpovedaj v slovenčine, " +
			"vecne a presne. K otázke nie sú k dispozícii žiadne úryvky dokumentov; " +
			"odpovedz podľa všeobecných právnych znalostí a upozorni na to.",
		contextHeader: "Úryvky z dokumentov:",
		disclaimer: "Upozornenie: Táto odpoveď nie je právnym poradenstvom. " +
			"Pre záväzné posúdenie sa obráťte na advokáta.",
		fallback: "Ospravedlňujeme sa, odpoveď sa momentálne nepodarilo " +
			"vygenerovať. Skúste to prosím neskôr.",
	},
	"cs": {
		system: "Jsi právní asistent kanceláře %s. Odpovídej česky, věcně a " +
			"přesně. Opírej se o poskytnuté úryvky dokumentů a při citování " +
			"uváděj jejich označení v hranatých závorkách.",
		systemNoRAG: "Jsi právní asistent kanceláře %s. Odpovídej česky, věcně a " +
			"přesně. K dotazu nejsou k dispozici žádné úryvky dokumentů; odpověz " +
			"podle obecných právních znalostí a upozorni na to.",
		contextHeader: "Úryvky z dokumentů:",
		disclaimer: "Upozornění: Tato odpověď není právním poradenstvím. " +
			"Pro závazné posouzení se obraťte na advokáta.",
		fallback: "Omlouváme se, odpověď se momentálně nepodařilo vygenerovat. " +
			"Zkuste to prosím později.",
	},
	"en": {
		system: "You are a legal assistant at %s. Answer factually and " +
			"precisely. Ground your answer in the provided document excerpts " +
			"and cite them by their bracketed labels.",
		systemNoRAG: "You are a legal assistant at %s. Answer factually and " +
			"precisely. No document excerpts are available for this question; " +
			"answer from general legal knowledge and say so.",
		contextHeader: "Document excerpts:",
		disclaimer: "Disclaimer: This answer is not legal advice. " +
			"Consult a qualified attorney for a binding assessment.",
		fallback: "We are sorry, an answer could not be generated right now. " +
			"Please try again later.",
	},
}

// packFor resolves a language pack, falling back to def for unknown codes.
func packFor(language, def string) languagePack {
	if pack, ok := languagePacks[strings.ToLower(language)]; ok {
		return pack
	}
	if pack, ok := languagePacks[def]; ok {
		return pack
	}
	return languagePacks["sk"]
}

// renderSystemPrompt renders the system message for a language and retrieval
// outcome.
func renderSystemPrompt(pack languagePack, orgName string, hasContext bool) string {
	if hasContext {
		return fmt.Sprintf(pack.system, orgName)
	}
	return fmt.Sprintf(pack.systemNoRAG, orgName)
}
