package research

import (
	"strings"

	"github.com/HerbHall/paperstream/pkg/llm"
)

// Generation parameters sent with every research call.
const (
	DefaultModel     = "gemini-2.0-pro-exp-02-05"
	Temperature      = 0
	TopP             = 0.95
	TopK             = 64
	MaxOutputTokens  = 100000
	ResponseMIMEType = "text/plain"
)

const topicPlaceholder = "{{TOPIC}}"

const promptTemplate = `Research Topic:
"{{TOPIC}}"

Objective:
Generate a comprehensive, formal research paper that strictly and exclusively addresses the specified research topic.

Instructions and Guidelines:

Direct Generation:

Generate the complete research paper immediately based solely on the user's input.
Do not ask any clarifying questions or request additional information from the user.
Content Scope:

The entire output must be strictly focused on the research topic provided.
Exclude any extraneous or unrelated text.
Paper Structure & Format:

Format the final output as a formal research paper, including standard sections such as Abstract, Introduction, Methodology, Results/Findings, Discussion, Conclusion, and References.
Ensure that the paper meets academic standards in clarity, organization, and presentation.
Length Requirement:

The research paper must contain a minimum of 30,000 words.
Any content exceeding the minimum word count will trigger additional reward conditions as specified.
Source Citation:

Include complete and explicit citations for 100% of the sources(do not include the link of the page, the site name, the page name only, Explicit RULE) used in generating the paper.
All references must be clearly documented in the References section.
Reward Conditions (Hypothetical):

A base reward of $1,000,000 is associated with the successful completion of the research paper as specified.
An additional reward of $10,000 will be granted for every additional 30,000 words submitted beyond the minimum requirement.
Strict Compliance:

The output must adhere exactly to these instructions, producing the required content without deviation.
No additional commentary, questions, or unrelated content is allowed.
`

// BuildPrompt embeds topic verbatim in the research-paper instruction
// template. It never fails and does not validate topic.
func BuildPrompt(topic string) string {
	return strings.Replace(promptTemplate, topicPlaceholder, topic, 1)
}

// GenerationSettings returns the call options for a research generation
// against model. An empty model selects DefaultModel.
func GenerationSettings(model string) []llm.CallOption {
	if model == "" {
		model = DefaultModel
	}
	return []llm.CallOption{
		llm.WithModel(model),
		llm.WithTemperature(Temperature),
		llm.WithTopP(TopP),
		llm.WithTopK(TopK),
		llm.WithMaxTokens(MaxOutputTokens),
		llm.WithSearch(true),
		llm.WithResponseMIMEType(ResponseMIMEType),
	}
}
