package extract

import "fmt"

// ExtractionPrompt asks for the positive and negative points a transcript makes about product.
func ExtractionPrompt(product, transcript string) string {
	return fmt.Sprintf(`Please perform sentiment analysis on %s.
Only List down the important points which reflects positive sentiment and negative sentiment only.
You are given one youtube transcipt.
Transcript:%s`, product, transcript)
}

const formatInstructions = "The output should be a markdown code snippet formatted in the following schema, " +
	"including the leading and trailing \"```json\" and \"```\":\n\n" +
	"```json\n" +
	"{\n" +
	"\t\"positive_sentiment\": list  // list of positive sentiment sentences on the mentioned product.\n" +
	"\t\"negative_sentiment\": list  // list of negative sentiment sentences on the mentioned product.\n" +
	"}\n" +
	"```"

// StructurePrompt asks the model to restate extraction notes as the two-list JSON object.
func StructurePrompt(product, notes string) string {
	return fmt.Sprintf(`Instructions:
Please use the provided text to extract the positive and negative sentiment feedback.
The sentiments feedback should encapsulate the most impactful and representative sentiments expressed across the text given.

Criteria for Sentiment Feedback:

Relevance: Identify feedback that highlights key strengths, notable features, or exceptional experiences.
Impact: Prioritize feedback that elicits strong sentiment emotions or signifies significant satisfaction.
Consolidation: Prefer concise feedback that effectively summarizes broader sentiments.
Target product: %[1]s

Rules:
1. Strictly extract feedback pointing to %[1]s only! No other brand or product variant feedback will be included.

%[2]s
Text:%[3]s`, product, formatInstructions, notes)
}
