package persona

// StarterOption is one tappable triage choice shown before the first turn.
type StarterOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Starter is the triage widget configuration for a persona.
type Starter struct {
	Question string          `json:"question"`
	Options  []StarterOption `json:"options"`
}

// Starters returns the triage configuration for a persona, keyed by locale.
// Unknown personas get no starter.
func Starters(id ID, locale string) (Starter, bool) {
	byLocale, ok := starters[id]
	if !ok {
		return Starter{}, false
	}
	if s, ok := byLocale[locale]; ok {
		return s, true
	}
	s, ok := byLocale[fallbackLocale]
	return s, ok
}

var starters = map[ID]map[string]Starter{
	Detective: {
		LocaleTR: {
			Question: "🕵️‍♂️ Şüphenin kaynağı ne?",
			Options: []StarterOption{
				{Label: "Telefonunu Gizliyor 📱", Value: "Partnerim telefonunu gizliyor."},
				{Label: "Eve Geç Geliyor 🕒", Value: "Partnerim eve geç geliyor."},
				{Label: "Sosyal Medya 📸", Value: "Sosyal medyada şüpheli hareketleri var."},
				{Label: "Sadece His 🔮", Value: "Kanıt yok ama içimde bir his var."},
			},
		},
		LocaleEN: {
			Question: "🕵️‍♂️ What sparked the suspicion?",
			Options: []StarterOption{
				{Label: "Hiding Their Phone 📱", Value: "My partner hides their phone."},
				{Label: "Coming Home Late 🕒", Value: "My partner keeps coming home late."},
				{Label: "Social Media 📸", Value: "There's suspicious activity on social media."},
				{Label: "Just a Feeling 🔮", Value: "No proof, but my gut says something's off."},
			},
		},
	},
	Coach: {
		LocaleTR: {
			Question: "😈 Durum ne kanka?",
			Options: []StarterOption{
				{Label: "Ghosting 👻", Value: "Cevap vermiyor, ne yazmalıyım?"},
				{Label: "Flört 🔥", Value: "Flört ediyoruz, nasıl ilerletmeliyim?"},
				{Label: "Friendzone 🛑", Value: "Friendzone'dan çıkmak istiyorum."},
				{Label: "Ex 💔", Value: "Eski sevgilimle barışmak istiyorum."},
			},
		},
		LocaleEN: {
			Question: "😈 What's the situation?",
			Options: []StarterOption{
				{Label: "Ghosting 👻", Value: "They stopped replying, what do I text?"},
				{Label: "Flirting 🔥", Value: "We're flirting, how do I escalate?"},
				{Label: "Friendzone 🛑", Value: "I want out of the friendzone."},
				{Label: "Ex 💔", Value: "I want to get back with my ex."},
			},
		},
	},
}
