package ai

import "strings"

const tutorSystemPrompt = "You are an expert AI tutor for university engineering students. " +
	"Explain technical topics clearly and always respond with a single JSON object."

func explanationPrompt(input ExplanationInput) string {
	builder := strings.Builder{}
	builder.WriteString("Provide a clear and concise explanation of the following topic, grounded in the provided syllabus content.\n\n")
	builder.WriteString("Topic: ")
	builder.WriteString(input.Topic)
	builder.WriteString("\nSyllabus Content: ")
	builder.WriteString(input.SyllabusContent)
	builder.WriteString("\n\nReturn JSON of the form {\"explanation\": \"...\"}.")
	return builder.String()
}

func bulkExplanationPrompt(input BulkExplanationInput) string {
	builder := strings.Builder{}
	builder.WriteString("A student has asked for explanations for several topics from their syllabus. ")
	builder.WriteString("For each topic, write a concise but thorough explanation suitable for a second-year engineering student. ")
	builder.WriteString("Do not just rephrase the syllabus content. Explain the concept in your own words, covering the what, why and how. ")
	builder.WriteString("Use the syllabus content for context only.\n\n")
	builder.WriteString("Syllabus Content for Context:\n")
	builder.WriteString(input.SyllabusContent)
	builder.WriteString("\n\nTopics to Explain:\n")
	for _, topic := range input.Topics {
		builder.WriteString("- ")
		builder.WriteString(topic)
		builder.WriteString("\n")
	}
	builder.WriteString("\nReturn JSON of the form {\"explanations\": [\"...\"]} with exactly one string per topic, in the same order as the topics.")
	return builder.String()
}

func resourcePrompt(input ResourceInput) string {
	builder := strings.Builder{}
	builder.WriteString("Syllabus Subject Content:\n")
	builder.WriteString(input.SyllabusSubject)
	builder.WriteString("\n\nBased on the content of this subject, provide 3 highly relevant YouTube search keywords ")
	builder.WriteString("and 3 specific reference book recommendations, including authors if possible.\n")
	builder.WriteString("Return JSON of the form {\"youtubeKeywords\": [\"...\"], \"referenceBooks\": [\"...\"]}.")
	return builder.String()
}
