package jss

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// The Classic API reads JSON but only accepts XML for POST and PUT. Arrays are
// written as a container element holding one element per item, e.g.
// <criteria><criterion>...</criterion></criteria>.

// EncodeXML renders an object value as an XML document rooted at rootName.
// Object keys are written in sorted order. arrayElements names the item element of
// each array field; unknown arrays fall back to the field name without a trailing "s".
func EncodeXML(rootName string, value ldvalue.Value, arrayElements map[string]string) ([]byte, error) {
	if value.Type() != ldvalue.ObjectType {
		return nil, fmt.Errorf("encoding %s: expected an object, got %s", rootName, value.Type())
	}
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if err := encodeElement(enc, rootName, value, arrayElements); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", rootName, err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", rootName, err)
	}
	return buf.Bytes(), nil
}

func encodeElement(enc *xml.Encoder, name string, value ldvalue.Value, arrayElements map[string]string) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	switch value.Type() {
	case ldvalue.NullType:
	case ldvalue.ObjectType:
		keys := value.Keys()
		sort.Strings(keys)
		for _, k := range keys {
			if err := encodeElement(enc, k, value.GetByKey(k), arrayElements); err != nil {
				return err
			}
		}
	case ldvalue.ArrayType:
		itemName := arrayItemName(name, arrayElements)
		for i := 0; i < value.Count(); i++ {
			if err := encodeElement(enc, itemName, value.GetByIndex(i), arrayElements); err != nil {
				return err
			}
		}
	default:
		if err := enc.EncodeToken(xml.CharData(scalarText(value))); err != nil {
			return err
		}
	}

	return enc.EncodeToken(start.End())
}

func arrayItemName(name string, arrayElements map[string]string) string {
	if item, ok := arrayElements[name]; ok {
		return item
	}
	if trimmed := strings.TrimSuffix(name, "s"); trimmed != "" && trimmed != name {
		return trimmed
	}
	return name
}

func scalarText(value ldvalue.Value) string {
	switch value.Type() {
	case ldvalue.BoolType:
		return strconv.FormatBool(value.BoolValue())
	case ldvalue.NumberType:
		if value.IsInt() {
			return strconv.Itoa(value.IntValue())
		}
		return strconv.FormatFloat(value.Float64Value(), 'f', -1, 64)
	default:
		return value.StringValue()
	}
}

type xmlNode struct {
	name     string
	text     strings.Builder
	children []*xmlNode
}

// DecodeXML parses an XML document into its root element name and an object value.
// Leaf elements decode as strings. Containers listed in arrayElements, and siblings
// sharing a name, decode as arrays. "size" elements inside array containers are
// dropped, as the API adds them for information only.
func DecodeXML(data []byte, arrayElements map[string]string) (string, ldvalue.Value, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var stack []*xmlNode
	var root *xmlNode

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", ldvalue.Null(), fmt.Errorf("decoding XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: t.Name.Local}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root == nil {
				root = n
			} else {
				return "", ldvalue.Null(), fmt.Errorf("decoding XML: multiple root elements")
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return "", ldvalue.Null(), fmt.Errorf("decoding XML: no root element")
	}
	value := nodeValue(root, arrayElements)
	if len(root.children) == 0 {
		value = ldvalue.ObjectBuild().Build()
	}
	return root.name, value, nil
}

func nodeValue(n *xmlNode, arrayElements map[string]string) ldvalue.Value {
	if _, isArray := arrayElements[n.name]; isArray {
		b := ldvalue.ArrayBuild()
		for _, c := range n.children {
			if c.name == "size" {
				continue
			}
			b.Add(nodeValue(c, arrayElements))
		}
		return b.Build()
	}

	if len(n.children) == 0 {
		return ldvalue.String(strings.TrimSpace(n.text.String()))
	}

	counts := make(map[string]int, len(n.children))
	for _, c := range n.children {
		counts[c.name]++
	}

	obj := ldvalue.ObjectBuild()
	grouped := make(map[string]ldvalue.ArrayBuilder)
	var order []string
	for _, c := range n.children {
		if counts[c.name] > 1 {
			ab, ok := grouped[c.name]
			if !ok {
				ab = ldvalue.ArrayBuild()
				grouped[c.name] = ab
				order = append(order, c.name)
			}
			ab.Add(nodeValue(c, arrayElements))
			continue
		}
		obj.Set(c.name, nodeValue(c, arrayElements))
	}
	for _, name := range order {
		obj.Set(name, grouped[name].Build())
	}
	return obj.Build()
}
