package flow

import (
	"fmt"
	"strings"
)

// Branding carries the company identity and links interpolated into
// user-facing texts. The engine needs nothing else from configuration.
type Branding struct {
	CompanyName  string
	Description  string
	Email        string
	Phone        string
	Telegram     string
	Website      string
	CasesLink    string
	BookCallLink string
	WebAppURL    string
}

const (
	backToRolesCode     = "back_to_roles"
	contactSupportCode  = "contact_support"
	costCalculationCode = "request_cost_calculation"

	backLabel         = "◀️ Назад"
	backToRolesLabel  = "◀️ Назад к выбору роли"
	customOptionLabel = "✍️ Написать свой вариант"
)

// Contact-keyboard labels are shared with the transport: the share button is
// rendered by it, and the manual-entry button comes back as literal text.
const (
	ShareContactLabel  = "📲 Поделиться контактом"
	ManualContactLabel = "✍️ Написать свои контакты"
)

const welcomeTemplate = `🤖 **Привет! Я — AI-бот от %s**

Я анализирую вашу проблему и **предложу конкретное решение** за 2 минуты.

🎯 Отвечу на 3-4 вопроса
🧠 Проанализирую вашу ситуацию
✨ Подготовлю персональные рекомендации

**🎰 Бонус:** В конце вас ждёт сюрприз — рулетка с реальным денежным призом до **30 000 ₽** на услуги нашей компании!

Выберите, что вам ближе:`

// ----- entrepreneur chain -----

const entrepreneurQ1Prompt = `📊 **Шаг 1/4: Пожиратель времени.**

Какой **ОДИН рутинный процесс** отнимает у ваших сотрудников больше всего времени и сил?

_(например: обработка заявок, подготовка отчетов, ответы на однотипные вопросы клиентов, согласование документов)_

💡 *Можете ответить текстом или 🎙️ голосовым сообщением*`

const entrepreneurQ1CustomPrompt = `📊 **Шаг 1/4: Пожиратель времени.**

Напишите, какой процесс отнимает больше всего времени:

💡 *Можете ответить текстом или 🎙️ голосовым сообщением*`

const entrepreneurQ2Prompt = `⏱️ **Шаг 2/4: Масштаб проблемы.**

Как бы вы оценили, сколько **рабочих часов в неделю** вся команда тратит на этот процесс?`

const entrepreneurQ3Prompt = `🏢 **Шаг 3/4: Эпицентр рутины.**

Какой **отдел** или какая **роль** в компании больше всего страдает от этой задачи?

💡 *Можете выбрать вариант или написать свой*`

const entrepreneurQ3CustomPrompt = `🏢 **Шаг 3/4: Эпицентр рутины.**

Напишите, какой отдел или роль страдает больше всего:

💡 *Можете ответить текстом или 🎙️ голосовым сообщением*`

const entrepreneurContactPrompt = `🤝 **Шаг 4/4: Поиск решения!**

Спасибо! Я вижу узкое место в **%s**, которое съедает **%s** в неделю.

Готовлю для вас конкретную идею по автоматизации этого процесса.

Куда отправить решение и как к вам обращаться?`

// ----- startupper chain -----

const startupperQ1Prompt = `💡 **Шаг 1/3: Суть идеи.**

В двух словах, какую **ПРОБЛЕМУ** решает ваша идея? Для кого она?

_(Например: "Приложение для поиска напарников для тренировок" или "Сервис для автоматизации бухгалтерии фрилансеров")_

💡 *Можете ответить текстом или 🎙️ голосовым сообщением*`

const startupperQ2Prompt = `🎯 **Шаг 2/3: Текущий этап.**

На каком вы сейчас этапе?`

const startupperQ3Prompt = `🚧 **Шаг 3/3: Главный барьер.**

Что сейчас является **ГЛАВНЫМ препятствием** для быстрого запуска или роста?

💡 *Можете выбрать вариант или написать свой*`

const startupperQ3CustomPrompt = `🚧 **Шаг 3/3: Главный барьер.**

Напишите, что является главным препятствием:

💡 *Можете ответить текстом или 🎙️ голосовым сообщением*`

const startupperContactPrompt = `🤝 Отлично! Готовлю для вас пару мыслей по MVP и возможным подводным камням.

Куда отправить и как к вам обращаться?`

// ----- specialist chain -----

const specialistQ1Prompt = `🔧 **Шаг 1/3: Ключевой навык.**

Какая **ТЕХНОЛОГИЯ** или **НАВЫК** является вашим главным козырем?

💡 *Можете выбрать вариант или 🎙️ назвать свой*`

const specialistQ1CustomPrompt = `🔧 **Шаг 1/3: Ключевой навык.**

Напишите, какая технология или навык является вашим козырем:

💡 *Можете ответить текстом или 🎙️ голосовым сообщением*`

const specialistQ2Prompt = `🎯 **Шаг 2/3: Идеальный проект.**

В каких **ПРОЕКТАХ** вы хотели бы участвовать? Что вас зажигает?

💡 *Можете выбрать вариант или написать свой*`

const specialistQ2CustomPrompt = `🎯 **Шаг 2/3: Идеальный проект.**

Напишите, в каких проектах вы хотели бы участвовать:

💡 *Можете ответить текстом или 🎙️ голосовым сообщением*`

const specialistQ3Prompt = `💼 **Шаг 3/3: Формат работы.**

Какой **ФОРМАТ** сотрудничества вам интересен?`

const specialistContactPrompt = `🤝 Спасибо! У нас часто появляются проекты, где нужны именно такие специалисты.

Оставьте контакт, чтобы мы могли с вами связаться.`

// ----- contact capture -----

const (
	chooseContactMethodText = "Выберите удобный способ:"
	manualContactPrompt     = "📝 Напишите ваши контактные данные (имя, телефон, email):"
	contactReceivedText     = "✅ Спасибо! Контакт получен."
)

func contactReceivedFor(firstName string) string {
	if firstName == "" {
		return contactReceivedText
	}
	return fmt.Sprintf("✅ Спасибо, %s! Контакт получен.", firstName)
}

// ----- researcher path -----

const researcherMenuTemplate = `🌟 Рад, что вы заглянули!

Мы в **%s** создаем интеллектуальные IT-решения для бизнеса. От автоматизации рутины до сложных AI-систем.

Что бы вы хотели узнать о нас в первую очередь?`

const researcherCasesText = `🚀 **Наши лучшие кейсы:**

1️⃣ **E-commerce Automation** - Сэкономили 30 часов в неделю для компании с 50 сотрудниками
2️⃣ **AI Customer Support** - Внедрили чатбот, обрабатывающий 80% вопросов автоматически
3️⃣ **Data Pipeline** - Создали систему обработки данных для финтех-стартапа

Хотите узнать больше? Посетите наш сайт или свяжитесь с нами!`

const researcherTechText = `🤖 **Наш технологический стек:**

🐍 **Backend:** Python, FastAPI, Django
⚛️ **Frontend:** React, TypeScript, TailwindCSS
🗄️ **Database:** PostgreSQL, Redis
🤖 **AI/ML:** OpenAI, OpenRouter, LangChain
☁️ **Cloud:** Docker, Kubernetes, AWS

Заинтересовались? Давайте обсудим ваш проект!`

func researcherContactText(b Branding) string {
	parts := []string{"🤝 **Свяжитесь с нами:**"}
	if b.Email != "" {
		parts = append(parts, fmt.Sprintf("\n📧 Email: %s", b.Email))
	}
	if b.Phone != "" {
		parts = append(parts, fmt.Sprintf("\n📞 Телефон: %s", b.Phone))
	}
	if b.Telegram != "" {
		parts = append(parts, fmt.Sprintf("\n📱 Telegram: %s", b.Telegram))
	}
	if b.Website != "" {
		parts = append(parts, fmt.Sprintf("\n🌐 Website: %s", b.Website))
	}
	parts = append(parts, "\n\nБудем рады обсудить ваш проект!")
	return strings.Join(parts, "\n")
}

// ----- support -----

const supportPrompt = `💬 **Связь с сотрудником**

Опишите ваш вопрос или проблему, и наш специалист свяжется с вами в ближайшее время.

Напишите ваше сообщение текстом или отправьте голосовое сообщение 🎙️`

const supportConfirmationText = `✅ **Ваше сообщение отправлено!**

Наш специалист получил ваше обращение и свяжется с вами в ближайшее время.

Обычно мы отвечаем в течение 1-2 часов в рабочее время (пн-пт, 10:00-19:00 МСК).

Спасибо за обращение! 🙏`

func supportFailureText(email string) string {
	return fmt.Sprintf("❌ Произошла ошибка при отправке сообщения.\n\nПожалуйста, попробуйте позже или напишите нам напрямую:\n📧 %s", email)
}

const costCalculationConfirmation = `✅ **Запрос отправлен!**

Наш менеджер получил ваш запрос на расчет стоимости проекта и свяжется с вами в ближайшее время для уточнения деталей.

Обычно мы готовим предварительную оценку в течение 1-2 рабочих дней.

Спасибо за интерес! 🙏`

// ----- completion -----

const (
	cancelledText = "Диалог отменен. Спасибо за внимание! 👋"

	transcriptionFailedText = "❌ Не удалось распознать голосовое сообщение.\n\nПожалуйста, попробуйте написать текстом."

	entrepreneurGenerationError = "❌ Произошла ошибка при генерации решения. Попробуйте позже."
	startupperGenerationError   = "❌ Произошла ошибка при генерации рекомендаций. Попробуйте позже."
	specialistGenerationError   = "❌ Произошла ошибка. Попробуйте позже."

	rouletteButtonLabel = "🎰 Крутить AI рулетку"
)

func transcribedText(text string) string {
	return fmt.Sprintf("✅ *Распознано:* \"%s\"\n\n⏳ Обрабатываю ваш ответ...", text)
}

func entrepreneurResultText(b Branding, firstName string, answers map[string]string, solution string) string {
	return fmt.Sprintf(`✅ **Готово, %s! Все данные сохранены.**

🌐 **%s**

📊 **ПРОБЛЕМА:**
Ваш %s тратит около **%s** на **%s**.

✨ **РЕШЕНИЕ:**
%s

Мы в **%s** успешно решаем именно такие задачи. Будем рады обсудить детали и показать кейсы похожих компаний.

Хорошего дня и продуктивной работы! 🚀`,
		firstName, b.Website,
		answers["department_affected"], answers["time_lost"], answers["process_pain"],
		solution, b.CompanyName)
}

func startupperResultText(b Branding, firstName, welcome string) string {
	return fmt.Sprintf(`✅ **Готово! Спасибо за доверие, %s!**

%s

Мы в **%s** часто помогаем стартапам с разработкой MVP и масштабированием проектов. Будем рады обсудить детали и показать похожие кейсы.

Хорошего дня и удачи в развитии вашей идеи! 🚀`,
		firstName, welcome, b.CompanyName)
}

func specialistResultText(b Branding, welcome string) string {
	return fmt.Sprintf(`✅ **Отлично! Вы успешно добавлены в нашу базу специалистов.**

%s

Спасибо за интерес к **%s**! 🚀`,
		welcome, b.CompanyName)
}

func businessCardText(b Branding) string {
	parts := []string{fmt.Sprintf("🌟 **%s**", b.CompanyName)}
	if b.Description != "" {
		parts = append(parts, "\n"+b.Description)
	}
	if b.Email != "" {
		parts = append(parts, "\n📧 "+b.Email)
	}
	if b.Phone != "" {
		parts = append(parts, "\n📞 "+b.Phone)
	}
	if b.Telegram != "" {
		parts = append(parts, "\n📱 "+b.Telegram)
	}
	if b.Website != "" {
		parts = append(parts, "\n🌐 "+b.Website)
	}
	return strings.Join(parts, "\n")
}
