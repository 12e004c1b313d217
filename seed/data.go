package seed

var firstNames = []string{
	"Анна", "Иван", "Мария", "Олег", "Екатерина", "Дмитрий", "Ольга", "Сергей",
	"Наталья", "Алексей", "Anna", "John", "Maria", "Peter",
}

var lastNames = []string{
	"Петрова", "Иванов", "Смирнова", "Кузнецов", "Попова", "Соколов",
	"Лебедева", "Козлов", "Новикова", "Морозов", "Smith", "Brown",
}

var mailDomains = []string{"example.com", "mail.example.org", "corp.example.net"}

var companies = []string{
	"ООО Ромашка", "АО Вектор", "ИП Сидоров", "Acme Corp", "Northwind",
	"ООО Север", "Globex", "АО Прогресс",
}

var currencies = []string{"RUB", "USD", "EUR"}

var dealWords = []string{
	"Supply", "License", "Support", "Migration", "Audit", "Rollout",
	"Поставка", "Внедрение", "Обслуживание",
}

var taskVerbs = []string{"Call", "Email", "Meet", "Prepare", "Send", "Review"}

var taskObjects = []string{
	"the client", "the contract", "an offer", "the invoice", "a demo", "the report",
}

var descriptions = []string{
	"Discuss terms and next steps.",
	"Follow up on the last meeting.",
	"Уточнить сроки поставки.",
	"Согласовать договор с юристами.",
	"Collect feedback after the demo.",
}
