package request

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqbricks/reqbricks/internal/testutil"
)

const boolTextAdapter = "bool_text"

type direction int

const (
	up direction = iota
	down
)

func (d direction) String() string {
	switch d {
	case up:
		return "UP"
	case down:
		return "DOWN"
	default:
		return "UNKNOWN"
	}
}

type complexType struct {
	Message  string `param:"message"`
	severity int
}

func (c complexType) GetSeverity() int {
	return c.severity
}

type superComplexType struct {
	complexType
	fatal bool `param:"fatal"`
}

func (s superComplexType) IsFatal() bool {
	return s.fatal
}

type pasteRequest struct {
	userKey       string `param:"api_user_key,required"`
	limit         int    `param:"limit"`
	unused        string
	DeleteOnError bool              `param:"delete_on_error,adapter=bool_text"`
	Complex       *complexType      `param:"complex,adapter=complex"`
	Direction     direction         `param:"direction"`
	Note          *string           `param:"note"`
	Tags          []string          `param:"tags,adapter=csv"`
	Extra         map[string]string `param:"-"`
}

func (p pasteRequest) GetUserKey() string {
	return p.userKey
}

func (p *pasteRequest) GetLimit() int {
	return p.limit
}

func (p pasteRequest) GetUnused() string {
	return p.unused
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.RegisterAdapter(boolTextAdapter, Typed(func(b bool) (string, error) {
		if b {
			return testutil.TestTrueText, nil
		}
		return "this is false", nil
	})))
	require.NoError(t, r.RegisterAdapter("complex", Typed(func(c *complexType) (string, error) {
		return fmt.Sprintf("%d: %s", c.severity, c.Message), nil
	})))
	return r
}

func newPasteRequest() *pasteRequest {
	return &pasteRequest{
		userKey:       testutil.TestUserKey,
		limit:         5,
		unused:        "help",
		DeleteOnError: true,
		Complex:       &complexType{Message: "take me to your leader", severity: 8},
		Direction:     down,
		Tags:          []string{"a", "b"},
	}
}

func TestTranslate(t *testing.T) {
	translator := NewTranslator(WithRegistry(newTestRegistry(t)))

	t.Run("maps every populated parameter", func(t *testing.T) {
		params, err := translator.Translate(newPasteRequest())
		require.NoError(t, err)

		assert.Equal(t, map[string]string{
			testutil.TestUserKeyParam:       testutil.TestUserKey,
			testutil.TestLimitParam:         "5",
			testutil.TestDeleteOnErrorParam: testutil.TestTrueText,
			"complex":                       "8: take me to your leader",
			"direction":                     "DOWN",
			"tags":                          "a,b",
		}, params)
	})

	t.Run("accepts a struct value", func(t *testing.T) {
		params, err := translator.Translate(*newPasteRequest())
		require.NoError(t, err)
		assert.Equal(t, "5", params[testutil.TestLimitParam])
	})

	t.Run("untagged and ignored fields are skipped", func(t *testing.T) {
		req := newPasteRequest()
		req.Extra = map[string]string{"x": "y"}

		params, err := translator.Translate(req)
		require.NoError(t, err)
		assert.NotContains(t, params, "unused")
		assert.NotContains(t, params, "x")
		assert.NotContains(t, params, "Extra")
	})

	t.Run("nil optional values are dropped", func(t *testing.T) {
		req := newPasteRequest()
		req.Complex = nil
		req.Tags = nil

		params, err := translator.Translate(req)
		require.NoError(t, err)
		assert.NotContains(t, params, "complex")
		assert.NotContains(t, params, "tags")
		assert.NotContains(t, params, "note")
	})

	t.Run("pointer values are dereferenced", func(t *testing.T) {
		req := newPasteRequest()
		note := "remember"
		req.Note = &note

		params, err := translator.Translate(req)
		require.NoError(t, err)
		assert.Equal(t, "remember", params["note"])
	})
}

func TestTranslateSpecExample(t *testing.T) {
	type example struct {
		APIKey string `param:"api_user_key,required"`
		Limit  int    `param:"limit"`
		Flag   bool   `param:"delete_on_error,adapter=bool_text"`
	}
	translator := NewTranslator(WithRegistry(newTestRegistry(t)))

	t.Run("success", func(t *testing.T) {
		params, err := translator.Translate(example{APIKey: testutil.TestUserKey, Limit: 5, Flag: true})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"api_user_key":    "swkj-22984",
			"limit":           "5",
			"delete_on_error": "this is true",
		}, params)
	})

	t.Run("required blank", func(t *testing.T) {
		for _, key := range []string{"", "   ", "\t\n"} {
			params, err := translator.Translate(example{APIKey: key, Limit: 5, Flag: true})
			require.Error(t, err)
			assert.Nil(t, params)
			assert.True(t, IsKind(err, RequiredParameterMissing))
			assert.ErrorIs(t, err, ErrRequiredParameter)

			name, ok := MissingParameter(err)
			assert.True(t, ok)
			assert.Equal(t, "api_user_key", name)
			assert.Contains(t, err.Error(), "api_user_key")
		}
	})
}

func TestTranslateRequiredParameterMissing(t *testing.T) {
	translator := NewTranslator(WithRegistry(newTestRegistry(t)))

	req := newPasteRequest()
	req.userKey = ""

	params, err := translator.Translate(req)
	require.Error(t, err)
	assert.Nil(t, params)

	var te *TranslationError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, RequiredParameterMissing, te.Kind)
	assert.Equal(t, testutil.TestUserKeyParam, te.Param)
	assert.Equal(t, "userKey", te.Field)
	assert.Equal(t, "pasteRequest", te.Type)
}

func TestTranslateRequiredNilPointer(t *testing.T) {
	type req struct {
		Token *string `param:"token,required"`
	}

	_, err := Translate(req{})
	require.Error(t, err)
	assert.True(t, IsKind(err, RequiredParameterMissing))
}

func TestTranslateCountsParameters(t *testing.T) {
	type req struct {
		A string `param:"a,required"`
		B string `param:"b,required"`
		C string `param:"c"`
		D string `param:"d"`
		E int    `param:"e"`
	}

	params, err := Translate(req{A: "1", B: "2", D: "  "})
	require.NoError(t, err)

	// five descriptors, two optional blank ones removed by the default filter
	assert.Len(t, params, 3)
	assert.Equal(t, map[string]string{"a": "1", "b": "2", "e": "0"}, params)
}

func TestTranslateFilters(t *testing.T) {
	type req struct {
		A string `param:"a"`
		B string `param:"b"`
		C string `param:"c"`
	}
	obj := req{A: "x", B: "   "}

	t.Run("keep all emits blank as empty", func(t *testing.T) {
		params, err := NewTranslator(WithFilter(KeepAll)).Translate(obj)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a": "x", "b": "", "c": ""}, params)
	})

	t.Run("nil filter keeps all", func(t *testing.T) {
		params, err := NewTranslator(WithFilter(nil)).Translate(obj)
		require.NoError(t, err)
		assert.Len(t, params, 3)
	})

	t.Run("custom filter", func(t *testing.T) {
		onlyA := func(name, _ string) bool { return name == "a" }
		params, err := NewTranslator(WithFilter(onlyA)).Translate(obj)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a": "x"}, params)
	})
}

func TestTranslateInheritance(t *testing.T) {
	sct := superComplexType{
		complexType: complexType{Message: "sct message", severity: 10},
		fatal:       true,
	}

	params, err := Translate(sct)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"message": "sct message", "fatal": "true"}, params)
}

type base struct {
	ID      string `param:"id,required"`
	Version int    `param:"version"`
}

type middle struct {
	base
	Message string `param:"message"`
}

type leaf struct {
	*middle
	Fatal bool `param:"fatal"`
}

func TestTranslateEmbeddedChain(t *testing.T) {
	t.Run("three levels", func(t *testing.T) {
		obj := leaf{
			middle: &middle{base: base{ID: "42", Version: 3}, Message: "hello"},
			Fatal:  true,
		}

		params, err := Translate(&obj)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"id":      "42",
			"version": "3",
			"message": "hello",
			"fatal":   "true",
		}, params)
	})

	t.Run("nil embedded pointer reads as blank", func(t *testing.T) {
		_, err := Translate(leaf{Fatal: true})
		require.Error(t, err)
		name, ok := MissingParameter(err)
		require.True(t, ok)
		assert.Equal(t, "id", name)
	})
}

type stamped struct {
	time.Time `param:"ts,required,adapter=unix"`
	Name      string `param:"name"`
}

type optionalStamp struct {
	*time.Time `param:"ts,required"`
	Name       string `param:"name"`
}

func TestTranslateEmbeddedTagged(t *testing.T) {
	t.Run("tagged embedded struct is a parameter", func(t *testing.T) {
		params, err := Translate(stamped{Time: time.Unix(100, 0), Name: "n"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"ts": "100", "name": "n"}, params)
	})

	t.Run("nil tagged embedded pointer is missing", func(t *testing.T) {
		params, err := Translate(optionalStamp{Name: "n"})
		require.Error(t, err)
		assert.Nil(t, params)

		var te *TranslationError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, RequiredParameterMissing, te.Kind)
		assert.Equal(t, "ts", te.Param)
		assert.Equal(t, "Time", te.Field)
	})

	t.Run("untagged embedded struct is only walked", func(t *testing.T) {
		params, err := Translate(middle{base: base{ID: "7"}, Message: "m"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"id": "7", "version": "0", "message": "m"}, params)
	})
}

func TestTranslateFieldAccessError(t *testing.T) {
	type noGetter struct {
		secret string `param:"secret"`
	}

	params, err := Translate(noGetter{secret: "x"})
	require.Error(t, err)
	assert.Nil(t, params)
	assert.True(t, IsKind(err, FieldAccessError))
	assert.ErrorIs(t, err, ErrFieldAccess)
	assert.Contains(t, err.Error(), "GetSecret")
}

type failingGetter struct {
	token string `param:"token"`
}

func (f failingGetter) GetToken() (string, error) {
	return "", errors.New(testutil.TestError)
}

type badSignature struct {
	token string `param:"token"`
}

func (b badSignature) GetToken(prefix string) string {
	return prefix + b.token
}

type panickingGetter struct {
	token string `param:"token"`
}

func (p panickingGetter) GetToken() string {
	panic("boom")
}

type idiomaticGetter struct {
	token string `param:"token"`
}

func (i idiomaticGetter) Token() string {
	return i.token
}

func TestTranslateAccessors(t *testing.T) {
	t.Run("accessor error", func(t *testing.T) {
		_, err := Translate(failingGetter{token: "x"})
		require.Error(t, err)
		assert.True(t, IsKind(err, FieldAccessError))
		assert.Contains(t, err.Error(), testutil.TestError)
	})

	t.Run("accessor with arguments", func(t *testing.T) {
		_, err := Translate(badSignature{token: "x"})
		require.Error(t, err)
		assert.True(t, IsKind(err, FieldAccessError))
	})

	t.Run("accessor panic", func(t *testing.T) {
		_, err := Translate(panickingGetter{token: "x"})
		require.Error(t, err)
		assert.True(t, IsKind(err, FieldAccessError))
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("go style getter", func(t *testing.T) {
		params, err := Translate(idiomaticGetter{token: "abc"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"token": "abc"}, params)
	})
}

func TestTranslateAdapterErrors(t *testing.T) {
	type withUnknown struct {
		Flag bool `param:"flag,adapter=does_not_exist"`
	}
	type withFailing struct {
		Flag bool `param:"flag,adapter=failing"`
	}
	type withPanicking struct {
		Flag bool `param:"flag,adapter=panicking"`
	}

	cause := errors.New(testutil.TestError)
	registry := NewRegistry()
	require.NoError(t, registry.RegisterAdapter("failing", AdapterFunc(func(any) (string, error) {
		return "", cause
	})))
	require.NoError(t, registry.RegisterAdapter("panicking", AdapterFunc(func(any) (string, error) {
		panic("adapter blew up")
	})))
	require.NoError(t, registry.Register("broken_factory", func() (Adapter, error) {
		return nil, errors.New("cannot build")
	}))
	translator := NewTranslator(WithRegistry(registry))

	t.Run("unknown adapter", func(t *testing.T) {
		_, err := translator.Translate(withUnknown{Flag: true})
		require.Error(t, err)
		assert.True(t, IsKind(err, AdapterInstantiationError))
		assert.ErrorIs(t, err, ErrAdapterInstantiation)
	})

	t.Run("factory failure", func(t *testing.T) {
		type withBroken struct {
			Flag bool `param:"flag,adapter=broken_factory"`
		}
		_, err := translator.Translate(withBroken{Flag: true})
		require.Error(t, err)
		assert.True(t, IsKind(err, AdapterInstantiationError))
		assert.Contains(t, err.Error(), "cannot build")
	})

	t.Run("conversion failure wraps cause", func(t *testing.T) {
		_, err := translator.Translate(withFailing{Flag: true})
		require.Error(t, err)
		assert.True(t, IsKind(err, AdapterConversionError))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("conversion panic", func(t *testing.T) {
		_, err := translator.Translate(withPanicking{Flag: true})
		require.Error(t, err)
		assert.True(t, IsKind(err, AdapterConversionError))
	})

	t.Run("typed adapter mismatch", func(t *testing.T) {
		type wrongType struct {
			Flag string `param:"flag,adapter=yes_no"`
		}
		_, err := translator.Translate(wrongType{Flag: "true"})
		require.Error(t, err)
		assert.True(t, IsKind(err, AdapterConversionError))
	})
}

func TestTranslateAdapterRoundTrip(t *testing.T) {
	type req struct {
		Name string `param:"name,adapter=reverse"`
	}

	reverse := func(s string) string {
		r := []rune(s)
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
		return string(r)
	}

	registry := NewRegistry()
	require.NoError(t, registry.RegisterAdapter("reverse", Typed(func(s string) (string, error) {
		return reverse(s), nil
	})))

	for _, in := range []string{"abc", "swkj-22984", "a b c"} {
		params, err := NewTranslator(WithRegistry(registry)).Translate(req{Name: in})
		require.NoError(t, err)
		assert.Equal(t, reverse(in), params["name"])
	}
}

func TestTranslateInvalidObject(t *testing.T) {
	var nilPtr *pasteRequest

	tests := []struct {
		name string
		obj  any
	}{
		{"nil", nil},
		{"nil pointer", nilPtr},
		{"non struct", 42},
		{"pointer to non struct", new(string)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := Translate(tt.obj)
			require.Error(t, err)
			assert.Nil(t, params)
			assert.True(t, IsKind(err, InvalidObjectError))
			assert.ErrorIs(t, err, ErrInvalidObject)
		})
	}
}

func TestTranslateInvalidDescriptor(t *testing.T) {
	type req struct {
		A string `param:",required"`
	}

	_, err := Translate(req{A: "x"})
	require.Error(t, err)
	assert.True(t, IsKind(err, InvalidDescriptorError))
}

func TestTranslateNameCollision(t *testing.T) {
	type inner struct {
		Name string `param:"name"`
	}
	type outer struct {
		inner
		Label string `param:"name"`
	}

	params, err := Translate(outer{inner: inner{Name: "from-inner"}, Label: "from-outer"})
	require.NoError(t, err)
	assert.Equal(t, "from-inner", params["name"], "field discovered last wins")
}

func TestTranslateCustomTagName(t *testing.T) {
	type req struct {
		A string `query:"a" param:"ignored"`
		B string `param:"b"`
	}

	params, err := NewTranslator(WithTagName("query")).Translate(req{A: "1", B: "2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, params)
}

func TestTranslateWorkerCounts(t *testing.T) {
	type wide struct {
		F0 string `param:"f0"`
		F1 int    `param:"f1"`
		F2 bool   `param:"f2"`
		F3 string `param:"f3"`
		F4 string `param:"f4"`
		F5 uint   `param:"f5"`
		F6 string `param:"f6"`
		F7 string `param:"f7"`
	}
	obj := wide{F0: "a", F1: 1, F2: true, F3: "d", F5: 5, F6: "g", F7: strings.Repeat("h", 3)}

	sequential, err := NewTranslator(WithWorkers(1)).Translate(obj)
	require.NoError(t, err)

	for _, workers := range []int{0, 2, 8, 64} {
		parallel, err := NewTranslator(WithWorkers(workers)).Translate(obj)
		require.NoError(t, err)
		assert.Equal(t, sequential, parallel, "workers=%d", workers)
	}
}

func TestTranslateFirstFailureIsStable(t *testing.T) {
	type twoMissing struct {
		Label string `param:"label"`
		First string `param:"first,required"`
		Pad1  string `param:"pad1"`
		Pad2  string `param:"pad2"`
		Last  string `param:"last,required"`
	}
	obj := twoMissing{Label: "l", Pad1: "a", Pad2: "b"}

	for _, workers := range []int{1, 2, 8, 0} {
		translator := NewTranslator(WithWorkers(workers))
		for run := 0; run < 50; run++ {
			_, err := translator.Translate(obj)
			name, ok := MissingParameter(err)
			require.True(t, ok, "workers=%d", workers)
			require.Equal(t, "first", name, "workers=%d run=%d", workers, run)
		}
	}
}

func TestTranslatorConcurrentUse(t *testing.T) {
	translator := NewTranslator(WithRegistry(newTestRegistry(t)))

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(limit int) {
			defer wg.Done()
			req := newPasteRequest()
			req.limit = limit
			params, err := translator.Translate(req)
			if err != nil {
				errs <- err
				return
			}
			if params[testutil.TestLimitParam] != fmt.Sprint(limit) {
				errs <- fmt.Errorf("limit %d translated as %q", limit, params[testutil.TestLimitParam])
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
