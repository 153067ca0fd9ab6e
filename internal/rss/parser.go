package rss

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"

	"github.com/google/uuid"
	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// parserState 解析器状态。
type parserState int

const (
	stateOutside parserState = iota
	stateInsideItem
)

var parserStateNames = [...]string{
	stateOutside:    "Outside",
	stateInsideItem: "InsideItem",
}

func (s parserState) String() string {
	if int(s) < len(parserStateNames) {
		return parserStateNames[s]
	}
	return fmt.Sprintf("parserState(%d)", int(s))
}

// ItemParser 是单遍、只向前的订阅源条目状态机。
// 只识别 item/entry 内的 title、link、pubDate、updated，其余标签忽略。
type ItemParser struct {
	state   parserState
	current string // 最近一次打开的标签，任一标签关闭后清空
	item    RawItem
	emit    func(RawItem)

	// bases 每个打开的元素一帧，记录其作用域内的 xml:base，nil 表示没有
	bases []*url.URL
}

// NewItemParser 创建解析器，每遇到一个完整条目调用一次 emit。
func NewItemParser(emit func(RawItem)) *ItemParser {
	return &ItemParser{emit: emit}
}

// Parse 消费整个输入流。分词出错时停止，已发出的条目保留。
func (p *ItemParser) Parse(r io.Reader) error {
	x := xpp.NewXMLPullParser(r, false, charset.NewReaderLabel)
	p.bases = p.bases[:0]
	for {
		event, err := x.Next()
		if err != nil {
			return fmt.Errorf("XML 解析失败: %w", err)
		}
		switch event {
		case xpp.StartTag:
			p.pushBase(x.Attrs)
			p.startTag(qualifiedName(x), x)
		case xpp.Text:
			p.text(x.Text)
		case xpp.EndTag:
			p.endTag(x.Name)
			p.popBase()
		case xpp.EndDocument:
			return nil
		}
	}
}

func (p *ItemParser) startTag(name string, x *xpp.XMLPullParser) {
	p.current = name
	switch name {
	case "item", "entry":
		p.state = stateInsideItem
		p.item = RawItem{ID: uuid.New()}
	case "link":
		if p.state != stateInsideItem {
			return
		}
		if href := x.Attribute("href"); href != "" {
			p.item.Href = p.resolveHref(href)
		}
	}
}

func (p *ItemParser) text(s string) {
	if p.state != stateInsideItem {
		return
	}
	switch p.current {
	case "title":
		p.item.Title += s
	case "link":
		p.item.Link += s
	case "pubDate", "updated":
		p.item.Date += s
	}
}

func (p *ItemParser) endTag(local string) {
	// 标签关闭后的空白不再累积到任何字段
	p.current = ""
	if p.state != stateInsideItem {
		return
	}
	if local == "item" || local == "entry" {
		// 非严格模式下 &nbsp; 等 HTML 实体保持原样
		p.item.Title = html.UnescapeString(p.item.Title)
		if p.emit != nil {
			p.emit(p.item)
		}
		p.item = RawItem{}
		p.state = stateOutside
	}
}

// qualifiedName 返回带前缀的标签名，默认命名空间下只返回本地名。
// 这样 media:title、atom:link 不会混入条目字段。
func qualifiedName(x *xpp.XMLPullParser) string {
	if x.Space == "" {
		return x.Name
	}
	prefix, ok := x.Spaces[x.Space]
	if !ok {
		// 未声明的前缀，encoding/xml 会把前缀原样放在 Space 里
		return x.Space + ":" + x.Name
	}
	if prefix == "" {
		return x.Name
	}
	return prefix + ":" + x.Name
}

// pushBase 为新打开的元素压入一帧：有 xml:base 时相对父级解析，否则继承父级。
func (p *ItemParser) pushBase(attrs []xml.Attr) {
	base := p.currentBase()
	for _, attr := range attrs {
		if attr.Name.Local != "base" || (attr.Name.Space != xmlNamespace && attr.Name.Space != "xml") {
			continue
		}
		u, err := url.Parse(attr.Value)
		if err != nil {
			break
		}
		if base != nil {
			u = base.ResolveReference(u)
		}
		base = u
		break
	}
	p.bases = append(p.bases, base)
}

func (p *ItemParser) popBase() {
	if n := len(p.bases); n > 0 {
		p.bases = p.bases[:n-1]
	}
}

func (p *ItemParser) currentBase() *url.URL {
	if n := len(p.bases); n > 0 {
		return p.bases[n-1]
	}
	return nil
}

// resolveHref 按作用域内的 xml:base 解析相对地址，没有 base 时原样返回。
func (p *ItemParser) resolveHref(href string) string {
	base := p.currentBase()
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// ParseItems 解析 data 并返回所有原始条目。出错时返回已解析的部分和错误。
func ParseItems(data []byte) ([]RawItem, error) {
	var items []RawItem
	p := NewItemParser(func(it RawItem) {
		items = append(items, it)
	})
	err := p.Parse(bytes.NewReader(data))
	return items, err
}
