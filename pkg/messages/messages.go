// Package messages holds the user-facing reply texts.
package messages

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Messages is the full set of reply templates sent to chat users.
type Messages struct {
	Greeting           string `yaml:"greeting"`
	FoundHeader        string `yaml:"found_header"`
	NoMatches          string `yaml:"no_matches"`
	GenericError       string `yaml:"generic_error"`
	QAWelcome          string `yaml:"qa_welcome"`
	ContinueRetrieving string `yaml:"continue_retrieving"`
	InvalidChoice      string `yaml:"invalid_choice"`
	LostNotes          string `yaml:"lost_notes"`
	QAApology          string `yaml:"qa_apology"`
	OptionsPrompt      string `yaml:"options_prompt"`
}

// Default returns the built-in English texts.
func Default() Messages {
	return Messages{
		Greeting: "👋 Hello! I'm here to help you find study resources.\n\n" +
			"Please tell me what you're looking for. You can search by subject, subject code, faculty, module, or semester.\n\n" +
			"*For example:*\n" +
			"• `AI notes module 3`\n" +
			"• `notes for BCS515C`",
		FoundHeader:        "📘 Found %d resource(s):",
		NoMatches:          "❌ Sorry, no matching resources found. Please refine your query.",
		GenericError:       "⚠️ An error occurred while processing your request. Please try again.",
		QAWelcome:          "🧠 You can now ask questions about the notes I found!",
		ContinueRetrieving: "✅ You can now continue retrieving resources.",
		InvalidChoice:      "🤔 Please reply with 1 or 2.",
		LostNotes:          "I seem to have lost the notes. Please try searching again.",
		QAApology:          "⚠️ Sorry, I couldn’t process that question right now.",
		OptionsPrompt:      "\n\n👉 What would you like to do next?\n1️⃣ Ask questions about this note\n2️⃣ Continue retrieving",
	}
}

// Load returns the defaults overlaid with any non-empty values from a YAML
// file. An empty path yields the defaults.
func Load(path string) (Messages, error) {
	msgs := Default()
	if path == "" {
		return msgs, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return msgs, fmt.Errorf("read messages file: %w", err)
	}
	var override Messages
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return msgs, fmt.Errorf("parse messages file: %w", err)
	}
	msgs.merge(override)
	if strings.Count(msgs.FoundHeader, "%d") != 1 {
		return msgs, fmt.Errorf("found_header must contain exactly one %%d")
	}
	return msgs, nil
}

func (m *Messages) merge(o Messages) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&m.Greeting, o.Greeting)
	set(&m.FoundHeader, o.FoundHeader)
	set(&m.NoMatches, o.NoMatches)
	set(&m.GenericError, o.GenericError)
	set(&m.QAWelcome, o.QAWelcome)
	set(&m.ContinueRetrieving, o.ContinueRetrieving)
	set(&m.InvalidChoice, o.InvalidChoice)
	set(&m.LostNotes, o.LostNotes)
	set(&m.QAApology, o.QAApology)
	set(&m.OptionsPrompt, o.OptionsPrompt)
}

// WithOptions appends the two-option follow-up prompt to a reply.
func (m Messages) WithOptions(reply string) string {
	return reply + m.OptionsPrompt
}

// Found formats a search hit: the count header followed by one link per line.
func (m Messages) Found(links []string) string {
	return fmt.Sprintf(m.FoundHeader, len(links)) + "\n" + strings.Join(links, "\n")
}
