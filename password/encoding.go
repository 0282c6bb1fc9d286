package password

import "encoding/base64"

// PHC strings use unpadded standard base64.
var b64 = base64.RawStdEncoding
