package conversation

// 菜单按钮文本。用户点选后以文本事件回到状态机，所以必须与判断逻辑完全一致。
const (
	BtnWrite     = "✍️ Write a Review"
	BtnMaterials = "📚 Get Materials"
	BtnCancel    = "❌ Cancel"
	BtnAddMore   = "➕ Review Another Teacher"
	BtnManage    = "📋 Manage My Drafts"
	BtnSubmit    = "🚀 Submit All Reviews"
)

const (
	msgWelcome = "📋 **Teacher Review Bot**\n\n" +
		"👋 **Welcome!**\n" +
		"This platform collects anonymous instructor feedback to help the student community.\n\n" +
		"🎁 **Your Reward:**\n" +
		"Every approved review grants you access to the full review archive.\n\n" +
		"🛡️ **Privacy First:** Your identity is never shared.\n\n" +
		"👇 Select an option below:"

	msgWelcomeDeep = "🔄 **Add Additional Feedback**\n\n" +
		"You are adding another review for:\n" +
		"👨‍🏫 **%s**\n" +
		"📚 *%s*\n\n" +
		"Please give a rating to continue:"

	msgPromptStream  = "🏫 **Select your Department / Stream:**"
	msgPromptPeriod  = "📅 **Select your Academic Year:**"
	msgPromptSubject = "📚 **Select the Course / Subject:**\n*Use ⬅️ / ➡️ to browse pages.*"
	msgSubjectPage   = "📄 **Page %d of %d**: select your subject:"
	msgSubjectChosen = "✅ **Subject selected:** %s"
	msgPromptParty   = "👤 **Instructor's Full Name?**\n\n⚠️ *Type the full name (e.g., 'Dr. Abebe Kebede').*"
	msgPromptRating  = "⭐ **How would you rate this instructor overall?**"
	msgRatingSet     = "⭐ **Rating set: %s (%d/5)**\n\n%s"
	msgPromptBody    = "📝 **Write your detailed, constructive feedback:**\n\n" +
		"Try to cover:\n" +
		"  • Teaching style & clarity\n" +
		"  • Exam difficulty & fairness\n" +
		"  • Grading policy\n" +
		"  • Attendance / pop-quiz policy\n" +
		"  • Participation marks\n\n" +
		"*Minimum %d characters. Type below:*"

	msgBanned      = "🚫 **Access Denied.**\nYou have been restricted from this bot."
	msgInvalid     = "⚠️ Invalid selection. Please use the buttons provided."
	msgShortName   = "⚠️ Name too short. Please enter the full name (at least %d characters)."
	msgShortReview = "⚠️ **Review too short!** Please write at least %d characters with meaningful detail."
	msgNoData      = "⚠️ Session expired. Please type /start to begin again."
	msgRateLimit   = "⏳ **Slow down!**\n" +
		"You can submit at most %d reviews per %s.\n" +
		"Please wait a while and try again.\n\n" +
		"✅ **%d** review(s) were sent before the limit."
	msgProfanity = "⚠️ **Review Rejected Automatically.**\n\n" +
		"Your review contains inappropriate or offensive language.\n" +
		"Please rewrite it in a respectful, constructive manner.\n\n" +
		"*Repeated violations will result in a permanent ban.*"
	msgStrike        = "\n\n⚠️ Strike **%d/%d**."
	msgStrikeBanned  = "\n\n🚫 **You have been permanently banned due to repeated violations.**"
	msgLinkExpired   = "⚠️ **This link has expired.** Starting fresh."
	msgDraftSaved    = "✅ **Review saved to drafts!**"
	msgDraftSummary  = "📊 **Your Drafts (%d):**\n%s\n\n👇 **What next?**"
	msgNoDrafts      = "No drafts yet!"
	msgManage        = "📋 **Manage Your Drafts:**"
	msgDraftDeleted  = "🗑️ Draft deleted. Remaining:"
	msgAllDeleted    = "🗑️ All drafts deleted."
	msgEditing       = "✏️ **Editing:** %s\n\nPlease rewrite your feedback:"
	msgStreamReuse   = "🔄 **Stream:** %s\n\n%s"
	msgStartingNew   = "✅ Starting new review…"
	msgSubmitting    = "⏳ Submitting…"
	msgTransmitting  = "⏳ **Transmitting to moderators…**"
	msgSubmitted     = "🚀 **All Reviews Submitted!**\n\n" +
		"Thank you for contributing to the student community.\n" +
		"🔔 You will receive a notification here once your review is approved."
	msgMaterials     = "📂 **Study Materials**\n\nJoin the archive channel to access all resources."
	msgCancelled     = "❌ **Cancelled.**"
	msgMenuAgain     = "Use the menu to start again:"
	msgInternalError = "⚠️ Something went wrong on our side. Please try again in a moment."
)
