package moderation

// Reason is a pre-composed rejection the moderator can pick.
type Reason struct {
	Code    string
	Label   string
	Message string
}

// DefaultReason is used for any code outside the closed set.
const DefaultReason = "policy"

var reasons = []Reason{
	{
		Code:  "insulting",
		Label: "🤬 Insulting / Aggressive Language",
		Message: "❌ **Review Not Approved**\n\n" +
			"Your feedback contained language that may come across as aggressive or disrespectful.\n" +
			"We encourage reviews that are professional and focus on teaching quality.\n\n" +
			"Please revise your review and feel free to resubmit. 🙏",
	},
	{
		Code:  "tooshort",
		Label: "📏 Too Short / Lacks Detail",
		Message: "❌ **Review Not Approved**\n\n" +
			"Your review was a bit brief to be truly helpful for other students.\n" +
			"Consider adding details about teaching style, exam difficulty, grading fairness, and attendance policy.\n\n" +
			"A helpful review is usually 3–5 sentences. Give it another try! ✍️",
	},
	{
		Code:  "unclear",
		Label: "😕 Unclear / Hard to Understand",
		Message: "❌ **Review Not Approved**\n\n" +
			"Your review was a little difficult to follow.\n" +
			"Please write in clear sentences and organise your points so they are easy to understand.\n\n" +
			"You are welcome to revise and resubmit. ✅",
	},
	{
		Code:  "irrelevant",
		Label: "🔗 Irrelevant to the Teacher",
		Message: "❌ **Review Not Approved**\n\n" +
			"Your feedback did not appear to be about the instructor's teaching.\n" +
			"Please make sure your review addresses the teacher's methods, exams, and grading.\n\n" +
			"Feel free to start a fresh review. 📝",
	},
	{
		Code:  "duplicate",
		Label: "♻️ Duplicate / Already Submitted",
		Message: "❌ **Review Not Approved**\n\n" +
			"A very similar review already exists for this teacher.\n" +
			"Thank you for your contribution, no need to resubmit this one. 🙂",
	},
	{
		Code:  "policy",
		Label: "🚫 Community Policy Violation",
		Message: "❌ **Review Not Approved**\n\n" +
			"Your review did not meet our community guidelines.\n" +
			"Please ensure your feedback is honest, respectful, and focused on academic matters.\n\n" +
			"You are welcome to submit a revised version. 🔄",
	},
}

// Reasons lists the rejection reasons in menu order.
func Reasons() []Reason {
	return reasons
}

// NormalizeReason maps an unknown code to DefaultReason.
func NormalizeReason(code string) string {
	for _, r := range reasons {
		if r.Code == code {
			return code
		}
	}
	return DefaultReason
}

// RejectionText returns the message sent to the submitter for code.
func RejectionText(code string) string {
	code = NormalizeReason(code)
	for _, r := range reasons {
		if r.Code == code {
			return r.Message
		}
	}
	return ""
}
