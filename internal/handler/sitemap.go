package handler

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// sitemapStaticLinks 是站点地图中的固定链接。
var sitemapStaticLinks = []sitemapURL{
	{Loc: "/", ChangeFreq: "daily", Priority: "1.0"},
	{Loc: "/terms", ChangeFreq: "monthly", Priority: "0.8"},
	{Loc: "/contacts", ChangeFreq: "monthly", Priority: "0.8"},
	{Loc: "/privacy-policy", ChangeFreq: "monthly", Priority: "0.6"},
	{Loc: "/register", ChangeFreq: "weekly", Priority: "0.9"},
	{Loc: "/faqs", ChangeFreq: "weekly", Priority: "0.7"},
	{Loc: "/legitimacy", ChangeFreq: "monthly", Priority: "0.7"},
	{Loc: "/ghana", ChangeFreq: "daily", Priority: "0.8"},
	{Loc: "/kenya", ChangeFreq: "weekly", Priority: "0.8"},
	{Loc: "/gallery", ChangeFreq: "monthly", Priority: "0.7"},
	{Loc: "/zambia", ChangeFreq: "monthly", Priority: "0.8"},
	{Loc: "/how-it-works", ChangeFreq: "monthly", Priority: "0.6"},
	{Loc: "/blog", ChangeFreq: "daily", Priority: "1.0"},
}

// Sitemap 输出 sitemap.xml，并发请求共享同一次生成。
func (a *API) Sitemap(c *gin.Context) {
	body, err, _ := a.sitemapGroup.Do("sitemap", func() (interface{}, error) {
		return a.buildSitemap(context.WithoutCancel(c.Request.Context()))
	})
	if err != nil {
		a.log.Errorw("build sitemap failed", "err", err)
		c.Error(err)
		c.String(http.StatusInternalServerError, "failed to build sitemap")
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", body.([]byte))
}

func (a *API) buildSitemap(ctx context.Context) ([]byte, error) {
	entries, err := a.posts.SitemapEntries(ctx)
	if err != nil {
		return nil, err
	}

	base := strings.TrimRight(a.cfg.SiteBaseURL, "/")
	urls := make([]sitemapURL, 0, len(sitemapStaticLinks)+len(entries))
	for _, link := range sitemapStaticLinks {
		link.Loc = base + link.Loc
		urls = append(urls, link)
	}
	for _, entry := range entries {
		urls = append(urls, sitemapURL{
			Loc:        base + "/blog/" + url.PathEscape(entry.Slug),
			LastMod:    entry.UpdatedAt.UTC().Format(time.RFC3339),
			ChangeFreq: "daily",
			Priority:   "0.9",
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(sitemapURLSet{XMLNS: sitemapNamespace, URLs: urls}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
