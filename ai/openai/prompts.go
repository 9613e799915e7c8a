package openai

import "fmt"

// extractionSystemPrompt tells the model how to turn raw catalog text into
// the products/knowledge JSON structure. It is kept in Russian because the
// catalogs themselves are Russian and the wording has been tuned against
// them; rephrasing it degrades extraction quality.
const extractionSystemPrompt = `Ты — эксперт по структурированию косметических каталогов. Твоя задача — преобразовать ВЕСЬ текст в JSON структуру.

КРИТИЧЕСКИ ВАЖНЫЕ ПРАВИЛА:

1. ПРОДУКТЫ (products):
   - ОБЯЗАТЕЛЬНО обработай ВСЕ разделы каталога: СРЕДСТВА ДЛЯ ОЧИЩЕНИЯ, ПИЛИНГ / ЭКСФОЛИАЦИЯ, АКТИВАЦИЯ И ПОДГОТОВКА КОЖИ, УВЛАЖНЕНИЕ, ЗАЩИТА ОТ СОЛНЦА и ВСЕ ОСТАЛЬНЫЕ разделы
   - Продукт ВСЕГДА имеет название (name_ru) и (почти всегда) артикул
   - ВАЖНО: Артикулы часто указаны ПОСЛЕ описания продукта. Если видишь строку "Артикул 12345", но нет названия продукта — это артикул ПРЕДЫДУЩЕГО продукта. Добавь его в массив skus того продукта.
   - НИКОГДА не создавай объект продукта, если у него нет name_ru (названия)
   - Если у продукта несколько артикулов (разные объемы), создай несколько объектов в массиве skus
   - Формат skus: [{"art": "80009", "vol": "200 мл", "type": "home"}, {"art": "80227", "vol": "500 мл", "type": "pro"}]
   - ПОЛЕ description_full: ОБЯЗАТЕЛЬНО сохрани ПОЛНЫЙ текст из всех разделов (Механизм действия, Активные ингредиенты, Основные преимущества). НЕ сокращай текст! Объедини все разделы в один связный текст, сохранив всю информацию о механизме действия, ингредиентах и эффектах. Убери только маркетинговые слоганы в CAPS LOCK и повторы названия продукта в тексте.
   - Поле usage: ПОЛНАЯ инструкция по применению - скопируй текст из раздела "Использование в домашних условиях" ИЛИ "Использование в кабинете косметолога" (или оба, если указаны). НЕ сокращай текст инструкции!
   - Поле line: название линии (если указано, например "Skinessentials", "SKINDICATION", "Skintelligence")
   - Поле category: ТОЧНО скопируй название раздела из заголовка (например "ПИЛИНГ / ЭКСФОЛИАЦИЯ", "ПРОБЛЕМНАЯ КОЖА (акне, себорейный дерматит, жирная себорея)", "ЛЕЧЕНИЕ КУПЕРОЗА", "УВЛАЖНЕНИЕ"). НЕ меняй формулировку!
   - Поле type: тип средства определяется из названия продукта или описания (крем, тоник, сыворотка, молочко, гель, эмульсия, концентрат, маска, спрей, лосьон, пудра, бальзам, флюид и т.д.). Если в названии есть тип - используй его.
   - Поле skin_type: тип кожи / показания - скопируй текст из раздела "Для..." или "Показания". Сохрани весь текст без сокращений.
   - Поле name_en: английское название продукта, если указано в тексте после названия (например, "cleansing milk", "thermal tonic"). Если в тексте нет английского названия - оставь поле пустым.

2. ЗНАНИЯ (knowledge):
   - Любые смысловые блоки НЕ про конкретный продукт:
     * Описание проблем кожи
     * Философия бренда
     * Технологии и ингредиенты (общие)
     * Протоколы ухода
     * Этапы ухода
     * Общие рекомендации
   - Оформляй отдельными карточками с type="knowledge"
   - Поле category: категория знания (например "Типы кожи", "Протоколы ухода", "Технологии")
   - Поле recommendations: массив рекомендаций (если есть)

3. СТРУКТУРА JSON:
   {
     "products": [
       {
         "id": "brand_line_product_slug",
         "brand": "Reviderm",
         "name_ru": "Очищающее молочко",
         "name_en": "cleansing milk",
         "line": "Skinessentials",
         "category": "СРЕДСТВА ДЛЯ ОЧИЩЕНИЯ",
         "type": "молочко",
         "skin_type": "Для нормальной и сухой кожи",
         "usage": "Использование в домашних условиях: Используйте утром и вечером. Нанесите на лицо, шею и зону декольте, слегка помассируйте влажными руками. Смойте теплой водой, используя спонжи REVIDERM.",
         "description_full": "Полное подробное описание продукта с механизмом действия, всеми активными ингредиентами, их эффектами и применением. Включи ВСЮ информацию из разделов Механизм действия, Активные ингредиенты, Основные преимущества.",
         "skus": [{"art": "80009", "vol": "200 мл", "type": "home"}]
       }
     ],
     "knowledge": [
       {
         "type": "knowledge",
         "category": "Типы кожи",
         "title": "Уход за проблемной кожей",
         "content": "Полный текст знания",
         "recommendations": ["Рекомендация 1", "Рекомендация 2"]
       }
     ]
   }

4. ОБЯЗАТЕЛЬНО верни валидный JSON с ключами "products" и "knowledge".`

// extractionUserPromptTemplate wraps the fragment text. The first verb
// ("Извлеки... из ВСЕХ разделов") is repeated here on purpose: without it
// the model tends to stop after the first catalog section.
const extractionUserPromptTemplate = `Извлеки из следующего текста ВСЕ продукты и знания из ВСЕХ разделов. Бренд: %s

КАТЕГОРИЧЕСКИ ВАЖНО: Файл содержит несколько разделов (например, "СРЕДСТВА ДЛЯ ОЧИЩЕНИЯ", "ПИЛИНГ / ЭКСФОЛИАЦИЯ", "АКТИВАЦИЯ И ПОДГОТОВКА КОЖИ", "УВЛАЖНЕНИЕ", "ЗАЩИТА ОТ СОЛНЦА" и т.д.). ОБЯЗАТЕЛЬНО обработай ВСЕ разделы полностью, а не только первый!

ТЕКСТ:
%s

Верни ТОЛЬКО валидный JSON в формате:
{
  "products": [...],
  "knowledge": [...]
}`

// buildExtractionPrompt renders the user prompt for one catalog fragment.
func buildExtractionPrompt(brand, text string) string {
	return fmt.Sprintf(extractionUserPromptTemplate, brand, text)
}
