package bot

// User-facing texts, verbatim from the shop's approved wording.
const (
	buttonContactManager = "Связаться с менеджером"
	buttonMakeOrder      = "Сделать заказ"
	buttonCancel         = "Отмена"

	keyboardPlaceholder = "Задайте вопрос или выберите действие"

	consultationHeader = "📞 **Связаться с менеджером**\n\nПожалуйста, укажите Ваше имя:"
	orderHeader        = "🛒 **Сделать заказ**\n\nПожалуйста, укажите Ваше имя:"

	askPhoneText        = "Спасибо! Теперь укажите Ваш номер телефона:"
	askOrderDetailsText = "Отлично! Теперь опишите, что Вы хотели бы заказать:"

	cancelledText = "Операция отменена."
	restartText   = "Произошла ошибка. Пожалуйста, начните заново, нажав на кнопку."

	errorProcessingText = "Извините, произошла ошибка при обработке вашего запроса. Попробуйте еще раз."
	errorFatalText      = "Произошла ошибка. Попробуйте позже."

	consultationDoneText = "✅ **Спасибо!**\n\nВаша заявка на консультацию принята! Наш менеджер свяжется с Вами в ближайшее время.\n\nВы также можете задать мне вопросы о продукции, и я помогу Вам с выбором."
	orderDoneText        = "✅ **Спасибо!**\n\nВаша заявка на заказ принята! Наш менеджер свяжется с Вами для уточнения деталей заказа.\n\nЕсли у Вас есть вопросы о продукции, я с радостью помогу Вам с выбором."
)

// Rows written to the dialogs worksheet when a request flow starts or
// completes.
const (
	dialogConsultationStarted  = "Начало сбора данных для консультации"
	dialogOrderStarted         = "Начало сбора данных для заказа"
	dialogConsultationAccepted = "Заявка на консультацию принята"
	dialogOrderAccepted        = "Заявка на заказ принята"

	dialogConsultationSummary = "Консультация: Имя=%s, Телефон=%s"
	dialogOrderSummary        = "Заказ: Имя=%s, Телефон=%s, Детали=%s"
)

// Group notification templates.
const (
	groupConsultationTemplate = "📞 **Новая заявка на консультацию**\n\n" +
		"👤 **Имя:** %s\n" +
		"📱 **Телефон:** %s\n" +
		"🆔 **ID пользователя:** %d\n" +
		"👤 **Username:** @%s\n" +
		"📅 **Время:** %s"

	groupOrderTemplate = "🛒 **Новая заявка на заказ**\n\n" +
		"👤 **Имя:** %s\n" +
		"📱 **Телефон:** %s\n" +
		"📦 **Детали заказа:** %s\n" +
		"🆔 **ID пользователя:** %d\n" +
		"👤 **Username:** @%s\n" +
		"📅 **Время:** %s"

	// Shown in notifications when the Telegram account has no username.
	usernamePlaceholder = "не указан"
)

// usernameOrPlaceholder substitutes the placeholder for accounts
// without a username.
func usernameOrPlaceholder(username string) string {
	if username == "" {
		return usernamePlaceholder
	}
	return username
}
