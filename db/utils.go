package db

var (
	NamespaceAccount  = []byte("acct")
	NamespaceNative   = []byte("nat")
	NamespaceNonce    = []byte("nonce")
	NamespaceEvent    = []byte("evt")
	NamespaceEventSeq = []byte("evtseq")
	EmptyKey          = []byte{}
	Separator         = []byte("|")
)

func PrependNamespace(namespace []byte, key []byte) []byte {
	if namespace != nil {
		prefixed := make([]byte, 0, len(namespace)+len(Separator)+len(key))
		prefixed = append(prefixed, namespace...)
		prefixed = append(prefixed, Separator...)
		return append(prefixed, key...)
	}
	return key
}

func ConvNilToBytes(byteArray []byte) []byte {
	if byteArray == nil {
		return []byte{}
	}
	return byteArray
}

// PrefixRange returns the [start, end) bounds covering every key that begins
// with prefix under namespace. end is nil when no upper bound exists.
func PrefixRange(namespace []byte, prefix []byte) ([]byte, []byte) {
	start := PrependNamespace(namespace, prefix)
	end := make([]byte, len(start))
	copy(end, start)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return start, end[:i+1]
		}
	}
	return start, nil
}
