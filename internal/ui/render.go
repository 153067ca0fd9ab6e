package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/iabetor/pinews/internal/news"
	"github.com/iabetor/pinews/internal/rss"
)

// AllLoadedMessage 没有失败的订阅源时显示。
const AllLoadedMessage = "All sources loaded successfully."

// now 便于测试替换。
var now = time.Now

// RenderArticles 输出文章列表：标题、来源、相对时间和链接。
func RenderArticles(w io.Writer, articles []rss.Article) error {
	if len(articles) == 0 {
		_, err := fmt.Fprintln(w, DimStyle.Render("No articles."))
		return err
	}
	ref := now()
	var b strings.Builder
	for i, a := range articles {
		title := a.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(&b, "%s %s\n", DimStyle.Render(fmt.Sprintf("%3d.", i+1)), TitleStyle.Render(title))
		fmt.Fprintf(&b, "     %s %s %s\n",
			SourceStyle.Render(a.Source),
			DimStyle.Render("·"),
			DateStyle.Render(RelativeTime(ref, a.Published)))
		fmt.Fprintf(&b, "     %s\n", LinkStyle.Render(a.Link))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderStatus 输出失败的订阅源，按名称排序。
func RenderStatus(w io.Writer, failures map[string]string) error {
	if len(failures) == 0 {
		_, err := fmt.Fprintln(w, SuccessStyle.Render(AllLoadedMessage))
		return err
	}
	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Sources Status") + "\n")
	for _, name := range names {
		fmt.Fprintf(&b, "%s\n  %s\n", SourceStyle.Render(name), ErrorStyle.Render(failures[name]))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderSources 输出订阅源列表，失败的源带警告标记。
func RenderSources(w io.Writer, category string, statuses []news.SourceStatus) error {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Sources · %s (%d)", category, len(statuses))) + "\n")
	for _, st := range statuses {
		marker := SuccessStyle.Render("✓")
		if st.Failure != "" {
			marker = WarnStyle.Render("⚠")
		}
		fmt.Fprintf(&b, "%s %s %s\n", marker, SourceStyle.Render(st.Source.Name), DimStyle.Render(st.Source.ID))
		fmt.Fprintf(&b, "    %s\n", LinkStyle.Render(st.Source.URL))
		if st.Failure != "" {
			fmt.Fprintf(&b, "    %s\n", ErrorStyle.Render(st.Failure))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RelativeTime 返回 t 相对 ref 的简短描述。
func RelativeTime(ref, t time.Time) string {
	d := ref.Sub(t)
	switch {
	case d < 0:
		return t.Format("Jan 2, 2006")
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return t.Format("Jan 2, 2006")
}
