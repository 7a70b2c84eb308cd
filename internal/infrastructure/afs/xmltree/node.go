package xmltree

// Node 正規化済みのXMLノード
// Text / Empty / *Element のいずれか
type Node interface {
	Field
	node()
}

// Field 要素の子として格納される値
// 1回だけ出現したタグは Node、複数回出現したタグは Sequence になる
type Field interface {
	field()
}

// Text 子要素も属性も持たない要素のテキスト値
type Text string

// Empty 子要素・属性・テキストのいずれも持たない要素
type Empty struct{}

// Sequence 同名タグが複数回出現した場合の値（文書順を保持）
type Sequence []Node

// Element 子要素または属性を持つ要素
// 属性名も名前空間を除去したローカル名で保持するため、
// a:x と b:x のように同じローカル名の属性は最初に出現した値だけが残る
type Element struct {
	fields    map[string]Field
	order     []string
	attrs     map[string]string
	attrOrder []string
	text      string
	hasText   bool
}

func (Text) node()      {}
func (Text) field()     {}
func (Empty) node()     {}
func (Empty) field()    {}
func (*Element) node()  {}
func (*Element) field() {}
func (Sequence) field() {}

// NewElement 空のElementを作成
func NewElement() *Element {
	return &Element{
		fields: make(map[string]Field),
		attrs:  make(map[string]string),
	}
}

// Set 子フィールドを設定（既存キーは上書き、順序は初出を維持）
func (e *Element) Set(name string, value Field) {
	if _, ok := e.fields[name]; !ok {
		e.order = append(e.order, name)
	}
	e.fields[name] = value
}

// SetAttr 属性を設定
func (e *Element) SetAttr(name, value string) {
	if _, ok := e.attrs[name]; !ok {
		e.attrOrder = append(e.attrOrder, name)
	}
	e.attrs[name] = value
}

// SetText #textを設定
func (e *Element) SetText(text string) {
	e.text = text
	e.hasText = true
}

// Field 子フィールドを返す
func (e *Element) Field(name string) (Field, bool) {
	f, ok := e.fields[name]
	return f, ok
}

// Names 子フィールド名を文書順で返す
func (e *Element) Names() []string {
	names := make([]string, len(e.order))
	copy(names, e.order)
	return names
}

// Attr 属性値を返す
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// Text #textを返す
func (e *Element) Text() (string, bool) {
	return e.text, e.hasText
}

// StringField 子フィールドを文字列として返す
// Text / Empty / #text付きElement のみ文字列とみなし、それ以外はfalse
func (e *Element) StringField(name string) (string, bool) {
	f, ok := e.fields[name]
	if !ok {
		return "", false
	}
	switch v := f.(type) {
	case Text:
		return string(v), true
	case Empty:
		return "", true
	case *Element:
		return v.Text()
	default:
		return "", false
	}
}

// ToMap Nodeをプレーンなmap/slice/stringに変換
// Element は map[string]interface{}、Sequence は []interface{}、それ以外は string
func ToMap(f Field) interface{} {
	switch v := f.(type) {
	case Text:
		return string(v)
	case Empty:
		return ""
	case Sequence:
		items := make([]interface{}, len(v))
		for i, n := range v {
			items[i] = ToMap(n)
		}
		return items
	case *Element:
		m := make(map[string]interface{}, len(v.order)+len(v.attrOrder)+1)
		for _, name := range v.order {
			m[name] = ToMap(v.fields[name])
		}
		for _, name := range v.attrOrder {
			m["@"+name] = v.attrs[name]
		}
		if v.hasText {
			m["#text"] = v.text
		}
		return m
	default:
		return nil
	}
}
