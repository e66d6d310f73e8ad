package utils

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EnhanceImages 为 HTML 中的图片增加懒加载和防盗链属性
func EnhanceImages(htmlStr string) string {
	if !strings.Contains(htmlStr, "<img") {
		return htmlStr
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("loading", "lazy")
	})

	// goquery renders full document tags if missing, we just want the body content
	out, err := doc.Find("body").Html()
	if err != nil || out == "" {
		return htmlStr
	}
	return out
}
