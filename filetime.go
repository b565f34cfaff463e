package adhandler

import (
	"math/big"
	"time"
)

/*
filetime.go decodes Windows-NT filetime values: a big integer counting
100-nanosecond ticks since 1601-01-01 UTC. math/big is used because the
tick count can exceed the range a plain int64 can hold precisely at the
extremes, including the "never expires" sentinel handled below.
*/

// neverExpiresTicks is the sentinel AD uses in accountExpires et al. to
// mean "never". Decoding it through the millisecond/epoch arithmetic below
// would format a nonsensical date (and risks silently losing precision,
// per §9 Open Question (i)), so it is special-cased and passed through as
// the documented sentinel string.
const neverExpiresTicks = "9223372036854775807"

var (
	ticksPerMillisecond = big.NewInt(10000)
	epochDiffMillis      = big.NewInt(11644473600000)
)

// DecodeFiletime implements the Windows-NT filetime decoder of §4.5.
func DecodeFiletime(value any, raw []byte) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, &DecoderError{Message: "filetime decoder requires a string value"}
	}
	if s == "0" || s == "" {
		return nil, nil
	}
	if s == neverExpiresTicks {
		return neverExpiresTicks, nil
	}

	ticks, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, &DecoderError{Raw: s, Message: "invalid filetime value " + s}
	}

	millis := new(big.Int).Div(ticks, ticksPerMillisecond)
	millis.Sub(millis, epochDiffMillis)

	if !millis.IsInt64() {
		return nil, &DecoderError{Raw: s, Message: "filetime value out of representable range"}
	}

	t := time.UnixMilli(millis.Int64()).UTC()
	return t.Format("2006-01-02 15:04:05"), nil
}
