package tlv

import "testing"

func TestKind_String(t *testing.T) {
	testCases := []struct {
		kind     Kind
		expected string
	}{
		{KindUint8, "Uint8"},
		{KindUint16, "Uint16"},
		{KindUint32, "Uint32"},
		{KindUint64, "Uint64"},
		{KindBytes1, "Bytes1"},
		{KindBytes2, "Bytes2"},
		{KindBytes4, "Bytes4"},
		{KindString1, "String1"},
		{KindString2, "String2"},
		{KindString4, "String4"},
		{KindStruct, "Struct"},
		{KindArray, "Array"},
		{KindEnd, "End"},
		{Kind(99), "Unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.kind.String(); got != tc.expected {
				t.Errorf("Kind(%d).String() = %q, want %q", tc.kind, got, tc.expected)
			}
		})
	}
}

func TestKind_isUint(t *testing.T) {
	uints := []Kind{KindUint8, KindUint16, KindUint32, KindUint64}
	notUints := []Kind{KindBytes1, KindString1, KindStruct, KindArray, KindEnd}

	for _, k := range uints {
		if !k.isUint() {
			t.Errorf("%v.isUint() = false, want true", k)
		}
	}
	for _, k := range notUints {
		if k.isUint() {
			t.Errorf("%v.isUint() = true, want false", k)
		}
	}
}

func TestKind_isBytes(t *testing.T) {
	bytesKinds := []Kind{KindBytes1, KindBytes2, KindBytes4}
	notBytes := []Kind{KindUint8, KindString1, KindStruct}

	for _, k := range bytesKinds {
		if !k.isBytes() {
			t.Errorf("%v.isBytes() = false, want true", k)
		}
	}
	for _, k := range notBytes {
		if k.isBytes() {
			t.Errorf("%v.isBytes() = true, want false", k)
		}
	}
}

func TestKind_isString(t *testing.T) {
	stringKinds := []Kind{KindString1, KindString2, KindString4}
	notStrings := []Kind{KindUint8, KindBytes1, KindArray}

	for _, k := range stringKinds {
		if !k.isString() {
			t.Errorf("%v.isString() = false, want true", k)
		}
	}
	for _, k := range notStrings {
		if k.isString() {
			t.Errorf("%v.isString() = true, want false", k)
		}
	}
}

func TestKind_isContainer(t *testing.T) {
	containers := []Kind{KindStruct, KindArray}
	notContainers := []Kind{KindUint8, KindBytes1, KindString1, KindEnd}

	for _, k := range containers {
		if !k.isContainer() {
			t.Errorf("%v.isContainer() = false, want true", k)
		}
	}
	for _, k := range notContainers {
		if k.isContainer() {
			t.Errorf("%v.isContainer() = true, want false", k)
		}
	}
}

func TestKind_fixedSize(t *testing.T) {
	testCases := []struct {
		kind     Kind
		expected int
	}{
		{KindUint8, 1},
		{KindUint16, 2},
		{KindUint32, 4},
		{KindUint64, 8},
		{KindBytes1, 0},
		{KindStruct, 0},
	}
	for _, tc := range testCases {
		if got := tc.kind.fixedSize(); got != tc.expected {
			t.Errorf("%v.fixedSize() = %d, want %d", tc.kind, got, tc.expected)
		}
	}
}

func TestKind_lengthPrefixSize(t *testing.T) {
	testCases := []struct {
		kind     Kind
		expected int
	}{
		{KindBytes1, 1},
		{KindBytes2, 2},
		{KindBytes4, 4},
		{KindString1, 1},
		{KindString2, 2},
		{KindString4, 4},
		{KindUint8, 0},
		{KindStruct, 0},
	}
	for _, tc := range testCases {
		if got := tc.kind.lengthPrefixSize(); got != tc.expected {
			t.Errorf("%v.lengthPrefixSize() = %d, want %d", tc.kind, got, tc.expected)
		}
	}
}

func TestTag_Constructors(t *testing.T) {
	t.Run("Anonymous", func(t *testing.T) {
		tag := Anonymous()
		if !tag.IsAnonymous() {
			t.Error("Anonymous().IsAnonymous() = false")
		}
	})

	t.Run("FieldTag", func(t *testing.T) {
		for _, num := range []uint8{0, 1, 127, 255} {
			tag := FieldTag(num)
			if tag.IsAnonymous() {
				t.Errorf("FieldTag(%d).IsAnonymous() = true", num)
			}
			if tag.FieldNumber() != num {
				t.Errorf("FieldNumber() = %d, want %d", tag.FieldNumber(), num)
			}
		}
	})
}
