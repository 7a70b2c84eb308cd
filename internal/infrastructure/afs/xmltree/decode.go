package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

var (
	// ErrParse XMLとして解析できないエラー
	ErrParse = errors.New("XML Parse Error")
	// ErrNotFound 結果要素もSOAP Bodyも見つからないエラー
	ErrNotFound = errors.New("result element not found")
)

// NotFoundError 指定した結果要素が見つからないエラー
type NotFoundError struct {
	Tag string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Could not find '%s' or a valid response body in the XML.", e.Tag)
}

// Is errors.Is(err, ErrNotFound) を満たす
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// rawElement 名前空間を除去済みの解析木
type rawElement struct {
	local    string
	attrs    []xml.Attr
	children []*rawElement
	text     strings.Builder
}

// parse XML文書を解析してルート要素を返す
// テキストは最初の子要素より前の文字データのみ保持する
// UTF-8以外の encoding 宣言（ISO-8859-1 など）はUTF-8に変換して読む
func parse(payload []byte) (*rawElement, error) {
	dec := xml.NewDecoder(bytes.NewReader(payload))
	dec.CharsetReader = charset.NewReaderLabel

	var root *rawElement
	var stack []*rawElement

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, errors.New("junk after document element")
			}
			el := &rawElement{local: t.Name.Local, attrs: t.Attr}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			} else {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				if root != nil && len(bytes.TrimSpace(t)) > 0 {
					return nil, errors.New("junk after document element")
				}
				continue
			}
			current := stack[len(stack)-1]
			if len(current.children) == 0 {
				current.text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("no element found")
	}
	return root, nil
}

// walk 前順（自身→子孫）で要素をたどる。fnがtrueを返したら停止
func (r *rawElement) walk(fn func(*rawElement) bool) bool {
	if fn(r) {
		return true
	}
	for _, c := range r.children {
		if c.walk(fn) {
			return true
		}
	}
	return false
}

// find 前順探索でローカル名が一致する最初の要素を返す
func (r *rawElement) find(match func(local string) bool) *rawElement {
	var found *rawElement
	r.walk(func(el *rawElement) bool {
		if match(el.local) {
			found = el
			return true
		}
		return false
	})
	return found
}

// convert 要素を正規化済みNodeに変換
func convert(r *rawElement) Node {
	text := strings.TrimSpace(r.text.String())

	attrs := make([]xml.Attr, 0, len(r.attrs))
	for _, a := range r.attrs {
		// 名前空間宣言は属性として扱わない
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		attrs = append(attrs, a)
	}

	if len(r.children) == 0 && len(attrs) == 0 {
		if text == "" {
			return Empty{}
		}
		return Text(text)
	}

	el := NewElement()

	grouped := make(map[string][]Node)
	var order []string
	for _, c := range r.children {
		if _, ok := grouped[c.local]; !ok {
			order = append(order, c.local)
		}
		grouped[c.local] = append(grouped[c.local], convert(c))
	}
	for _, name := range order {
		nodes := grouped[name]
		if len(nodes) == 1 {
			el.Set(name, nodes[0])
		} else {
			el.Set(name, Sequence(nodes))
		}
	}

	// 名前空間の異なる同名属性は最初に出現したものを残す
	for _, a := range attrs {
		if _, ok := el.Attr(a.Name.Local); ok {
			continue
		}
		el.SetAttr(a.Name.Local, a.Value)
	}

	if text != "" {
		el.SetText(text)
	}
	return el
}
