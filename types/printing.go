// The MIT License (MIT)
//
// Copyright (c) 2019 West Damron
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package types

import (
	"strconv"
	"strings"
	"sync"
)

var printerPool = sync.Pool{
	New: func() interface{} { return &typePrinter{} },
}

func newTypePrinter(canonical bool) *typePrinter {
	p := printerPool.Get().(*typePrinter)
	p.canonical = canonical
	return p
}

func (p *typePrinter) Release() {
	p.sb.Reset()
	p.canonical = false
	printerPool.Put(p)
}

type typePrinter struct {
	sb strings.Builder
	// canonical output distinguishes nominal names from scalars, params, and type-variables
	canonical bool
}

// TypeString returns a string representation of a Type.
func TypeString(t Type) string {
	p := newTypePrinter(false)
	typeString(p, t)
	s := p.sb.String()
	p.Release()
	return s
}

// Key returns a canonical string for t. Two types have the same key if and only if they are
// structurally equal.
func Key(t Type) string {
	p := newTypePrinter(true)
	typeString(p, t)
	s := p.sb.String()
	p.Release()
	return s
}

// VarName returns the printed name of a type-variable: `T<id>`
func VarName(id uint32) string {
	if id < uint32(len(_varNames)) {
		return _varNames[id]
	}
	return "T" + strconv.FormatUint(uint64(id), 10)
}

var _varNames [128]string

func init() {
	for i := range _varNames {
		_varNames[i] = "T" + strconv.Itoa(i)
	}
}

// name writes a nominal name. Canonical output prefixes the name with its length, so names
// containing delimiters cannot be confused with the surrounding structure.
func (p *typePrinter) name(s string) {
	if p.canonical {
		p.sb.WriteString(strconv.Itoa(len(s)))
		p.sb.WriteByte(':')
	}
	p.sb.WriteString(s)
}

func (p *typePrinter) list(ts []Type) {
	for i, t := range ts {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		typeString(p, t)
	}
}

func typeString(p *typePrinter, t Type) {
	switch t := t.(type) {
	case nil:
		p.sb.WriteString("<nil>")

	case Unknown:
		p.sb.WriteString("unknown")

	case Never:
		p.sb.WriteString("never")

	case Scalar:
		p.sb.WriteString(t.Name())

	case Var:
		if p.canonical {
			p.sb.WriteByte('$')
		}
		p.sb.WriteString(VarName(t.Id))

	case *Named:
		if p.canonical {
			p.sb.WriteByte('%')
		}
		p.name(t.Name)

	case *Param:
		if p.canonical {
			p.sb.WriteByte('\'')
		}
		p.name(t.Name)

	case *Generic:
		if p.canonical {
			p.sb.WriteByte('%')
		}
		p.name(t.Name)
		if len(t.Args) == 0 && !p.canonical {
			return
		}
		p.sb.WriteByte('<')
		p.list(t.Args)
		p.sb.WriteByte('>')

	case *Function:
		p.sb.WriteByte('(')
		p.list(t.Params)
		p.sb.WriteString(") -> ")
		typeString(p, t.Return)

	case *Array:
		p.sb.WriteByte('[')
		typeString(p, t.Elem)
		p.sb.WriteByte(']')

	case *Tuple:
		p.sb.WriteByte('(')
		p.list(t.Elems)
		if len(t.Elems) == 1 {
			p.sb.WriteByte(',')
		}
		p.sb.WriteByte(')')

	case *Option:
		p.sb.WriteString("Option<")
		typeString(p, t.Inner)
		p.sb.WriteByte('>')

	case *Result:
		p.sb.WriteString("Result<")
		typeString(p, t.Ok)
		p.sb.WriteString(", ")
		typeString(p, t.Err)
		p.sb.WriteByte('>')

	case *Future:
		p.sb.WriteString("Future<")
		typeString(p, t.Inner)
		p.sb.WriteByte('>')
	}
}
