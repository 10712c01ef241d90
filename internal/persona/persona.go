package persona

import (
	"fmt"
	"strings"

	"AutoPoster/internal/domain"
)

// Persona is the fixed instruction and style configuration handed to the
// content generator. It is built once at startup and never mutated.
type Persona struct {
	Name           string
	SystemPrompt   string
	ExpertiseAreas []string
	Tone           string
	Hashtags       []string
	MaxPostChars   int
}

// Default returns the built-in Android-developer ghostwriter persona.
func Default() Persona {
	return Persona{
		Name:         "Jasmeet Singh",
		SystemPrompt: defaultSystemPrompt,
		ExpertiseAreas: []string{
			"Android (Kotlin)", "Jetpack Compose", "Health Connect SDK",
			"MVVM/Clean Architecture", "Firebase",
		},
		Tone: "professional but conversational, light humor okay",
		Hashtags: []string{
			"#AndroidDev", "#Kotlin", "#JetpackCompose", "#MobileDevelopment",
			"#AppDevelopment", "#SoftwareEngineering", "#TechCommunity",
			"#Programming", "#BuildInPublic", "#HealthTech",
		},
		MaxPostChars: 3000,
	}
}

// System returns the system prompt, falling back to the built-in one when
// the configured prompt is blank.
func (p Persona) System() string {
	if s := strings.TrimSpace(p.SystemPrompt); s != "" {
		return s
	}
	return defaultSystemPrompt
}

// TopicPickerPrompt renders the selection request for the given candidate
// pool. Candidates are numbered so the model can only point at supplied
// topics.
func TopicPickerPrompt(candidates []domain.Topic, p Persona) string {
	var sb strings.Builder
	for i, t := range candidates {
		fmt.Fprintf(&sb, "\n%d. **%s**\n   %s\n   Source: %s\n", i+1, t.Title, t.Snippet, t.Source)
	}
	expertise := strings.Join(p.ExpertiseAreas, ", ")
	if expertise == "" {
		expertise = "the author's field"
	}
	return fmt.Sprintf(topicPickerTemplate, sb.String(), expertise)
}

// PostGeneratorPrompt renders the drafting request for the selected topic.
func PostGeneratorPrompt(sel domain.TopicSelection, p Persona) string {
	tone := p.Tone
	if tone == "" {
		tone = "professional but conversational"
	}
	hashtags := strings.Join(p.Hashtags, " ")
	return fmt.Sprintf(postGeneratorTemplate, sel.Topic.Title, sel.Angle, sel.PostType, tone, hashtags)
}

const defaultSystemPrompt = `You are a LinkedIn content strategist and ghostwriter for Jasmeet Singh, an Android Developer with 2+ years of experience.

## ABOUT JASMEET:
- Role: Android Developer (SDE) at a healthcare tech company
- Expertise: Android (Kotlin), Jetpack Compose, Health Connect SDK, MVVM/Clean Architecture, Firebase, Real-time apps
- Experience: Built healthcare apps (KinectedCare), EdTech apps (FindMyTuition - 5000+ downloads)
- Goals: Build visibility, share genuine learnings, connect with tech community

## YOUR TASK:
Write authentic, engaging LinkedIn posts that feel human-written, not AI-generated.

## POST RULES:
1. **Hook First**: First line must stop the scroll (shows in preview)
2. **Be Specific**: Use real examples, code concepts, actual scenarios
3. **Show Personality**: Professional but conversational, light humor okay
4. **Add Value**: Every post should teach something or spark thinking
5. **Engage**: End with a question or discussion starter

## FORMAT:
- Length: 150-250 words
- Short paragraphs (1-3 lines)
- Use line breaks for readability
- Max 3-4 emojis (don't overdo)
- 3-5 relevant hashtags at the END only

## AVOID:
- "I'm humbled/excited to announce..."
- Generic motivational quotes
- Obvious advice everyone knows
- Too many emojis or hashtags
- Sounding like ChatGPT wrote it
- Being preachy or lecturing

## HASHTAGS TO USE (pick 3-5):
#AndroidDev #Kotlin #JetpackCompose #MobileDevelopment #AppDevelopment #SoftwareEngineering #TechCommunity #Programming #BuildInPublic #HealthTech`

const topicPickerTemplate = `Based on these trending topics/news, pick the BEST ONE for a LinkedIn post.

## TRENDING TOPICS:
%s

## SELECTION CRITERIA:
1. Currently relevant/hot in the community
2. The author can add personal perspective (expertise: %s)
3. Will spark engagement (comments, discussions)
4. Not too generic or overdone

## RESPOND IN THIS EXACT JSON FORMAT:
{
    "selected_topic": "The exact title of the topic you picked, copied verbatim from the list",
    "why_selected": "Brief reason why this is best",
    "post_angle": "Suggested angle/perspective for the post",
    "post_type": "technical_tip | career_insight | trend_analysis | personal_story | hot_take"
}

The selected_topic MUST be one of the listed titles, copied exactly. Return ONLY the JSON, nothing else.`

const postGeneratorTemplate = `Write a LinkedIn post.

## TOPIC: %s
## ANGLE: %s
## POST TYPE: %s

## REQUIREMENTS:
1. Start with a scroll-stopping hook (first line is CRUCIAL)
2. Add the author's personal perspective
3. Include specific technical details or real scenarios where relevant
4. Keep it 150-250 words, tone: %s
5. End with an engaging question
6. Finish with 3-5 hashtags on the last line, chosen from: %s

## IMPORTANT:
- Write like a real developer sharing genuine thoughts
- Don't sound like AI or a motivational speaker
- Be specific, not generic

Write the post now (just the post content, nothing else):`
