package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StaticPage 是一个不依赖数据库的信息页面。
type StaticPage struct {
	Path        string
	Name        string
	Title       string
	Description string
	Paragraphs  []string
}

// StaticPages 列出站点的固定页面，路由与站点地图共用。
var StaticPages = []StaticPage{
	{
		Path:  "/legitimacy",
		Name:  "legitimacy",
		Title: "Is FastQash legit?",
		Paragraphs: []string{
			"FastQash is a registered remittance service operating under the regulations of every country it serves.",
			"Every transfer is tracked end to end and customer funds are held in segregated accounts.",
		},
	},
	{
		Path:  "/how-it-works",
		Name:  "how-it-works",
		Title: "How it works",
		Paragraphs: []string{
			"Create an account, verify your identity and add the recipient's mobile money or bank details.",
			"Choose the amount, confirm the exchange rate and the money arrives within minutes.",
		},
	},
	{
		Path:  "/countries",
		Name:  "countries",
		Title: "Supported countries",
		Paragraphs: []string{
			"We currently pay out to Ghana, Kenya and Zambia, with more corridors on the way.",
		},
	},
	{
		Path:  "/ghana",
		Name:  "ghana",
		Title: "Send money to Ghana",
		Paragraphs: []string{
			"Pay out to MTN Mobile Money, Vodafone Cash, AirtelTigo Money or any Ghanaian bank account.",
		},
	},
	{
		Path:  "/kenya",
		Name:  "kenya",
		Title: "Send money to Kenya",
		Paragraphs: []string{
			"Deliver straight to M-Pesa wallets or Kenyan bank accounts.",
		},
	},
	{
		Path:  "/zambia",
		Name:  "zambia",
		Title: "Send money to Zambia",
		Paragraphs: []string{
			"Send to Airtel Money, MTN MoMo or Zambian bank accounts.",
		},
	},
	{
		Path:  "/terms",
		Name:  "terms",
		Title: "Terms and conditions",
		Paragraphs: []string{
			"By using FastQash you agree to provide accurate information and to use the service only for lawful purposes.",
		},
	},
	{
		Path:  "/privacy-policy",
		Name:  "privacy-policy",
		Title: "Privacy policy",
		Paragraphs: []string{
			"We collect only the data required to process transfers and comply with anti money laundering rules.",
		},
	},
	{
		Path:  "/faqs",
		Name:  "faqs",
		Title: "Frequently asked questions",
		Paragraphs: []string{
			"How long does a transfer take? Most transfers arrive within minutes.",
			"What does it cost? The fee and exchange rate are shown before you confirm.",
		},
	},
	{
		Path:  "/contacts",
		Name:  "contacts",
		Title: "Contact us",
		Paragraphs: []string{
			"Reach our support team at support@fastqash.com.",
		},
	},
	{
		Path:  "/register",
		Name:  "register",
		Title: "Create your account",
		Paragraphs: []string{
			"Registration takes a couple of minutes and only needs a valid ID and phone number.",
		},
	},
}

// ShowStaticPage returns a handler rendering the given page.
func (a *API) ShowStaticPage(page StaticPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		a.renderHTML(c, http.StatusOK, "static_page.html", gin.H{
			"title":       page.Title,
			"description": page.Description,
			"page":        page.Name,
			"paragraphs":  page.Paragraphs,
		})
	}
}
