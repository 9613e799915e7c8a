package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the record types stored in Badger. Every serializer
// follows the same Marshal/Unmarshal/Size/Skip shape so the storage layer
// can treat record kinds uniformly. Timestamps are encoded as Unix
// microseconds, vectors as raw little-endian float32.
var (
	IDMUS           = idMUS{}
	DocKindMUS      = docKindMUS{}
	RoleMUS         = roleMUS{}
	DocumentMUS     = documentMUS{}
	DialogRecordMUS = dialogRecordMUS{}
	ManifestMUS     = manifestMUS{}
)

var (
	timeMicroMUS = timeMicroSer{}
	vectorMUS    = ord.NewSliceSer[float32](raw.Float32)
	metadataMUS  = ord.NewMapSer[string, string](ord.String, ord.String)
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	v = ID(num)
	return
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type docKindMUS struct{}

func (s docKindMUS) Marshal(v DocKind, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s docKindMUS) Unmarshal(bs []byte) (v DocKind, n int, err error) {
	num, n, err := varint.Int.Unmarshal(bs)
	v = DocKind(num)
	return
}

func (s docKindMUS) Size(v DocKind) (size int) {
	return varint.Int.Size(int(v))
}

func (s docKindMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

type roleMUS struct{}

func (s roleMUS) Marshal(v Role, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s roleMUS) Unmarshal(bs []byte) (v Role, n int, err error) {
	num, n, err := varint.Int.Unmarshal(bs)
	v = Role(num)
	return
}

func (s roleMUS) Size(v Role) (size int) {
	return varint.Int.Size(int(v))
}

func (s roleMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

type timeMicroSer struct{}

func (s timeMicroSer) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (s timeMicroSer) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	micro, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = time.UnixMicro(micro)
	return
}

func (s timeMicroSer) Size(v time.Time) (size int) {
	return varint.Int64.Size(v.UnixMicro())
}

func (s timeMicroSer) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

type documentMUS struct{}

func (s documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Slug, bs[n:])
	n += DocKindMUS.Marshal(v.Kind, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Contents, bs[n:])
	n += metadataMUS.Marshal(v.Metadata, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	n += timeMicroMUS.Marshal(v.InsertedAt, bs[n:])
	n += timeMicroMUS.Marshal(v.UpdatedAt, bs[n:])
	return
}

func (s documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Slug, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Kind, n1, err = DocKindMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Contents, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = metadataMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s documentMUS) Size(v Document) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Slug)
	size += DocKindMUS.Size(v.Kind)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Contents)
	size += metadataMUS.Size(v.Metadata)
	size += vectorMUS.Size(v.Vector)
	size += timeMicroMUS.Size(v.InsertedAt)
	size += timeMicroMUS.Size(v.UpdatedAt)
	return
}

func (s documentMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = DocKindMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = metadataMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = vectorMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = timeMicroMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = timeMicroMUS.Skip(bs[n:])
	n += n1
	return
}

type dialogRecordMUS struct{}

func (s dialogRecordMUS) Marshal(v DialogRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += varint.Int64.Marshal(v.ChatID, bs[n:])
	n += varint.Int64.Marshal(v.UserID, bs[n:])
	n += ord.String.Marshal(v.Username, bs[n:])
	n += ord.String.Marshal(v.FirstName, bs[n:])
	n += ord.String.Marshal(v.LastName, bs[n:])
	n += RoleMUS.Marshal(v.Role, bs[n:])
	n += ord.String.Marshal(v.Contents, bs[n:])
	n += timeMicroMUS.Marshal(v.Timestamp, bs[n:])
	n += timeMicroMUS.Marshal(v.InsertedAt, bs[n:])
	n += timeMicroMUS.Marshal(v.UpdatedAt, bs[n:])
	return
}

func (s dialogRecordMUS) Unmarshal(bs []byte) (v DialogRecord, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ChatID, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UserID, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Username, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FirstName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.LastName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Role, n1, err = RoleMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Contents, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s dialogRecordMUS) Size(v DialogRecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += varint.Int64.Size(v.ChatID)
	size += varint.Int64.Size(v.UserID)
	size += ord.String.Size(v.Username)
	size += ord.String.Size(v.FirstName)
	size += ord.String.Size(v.LastName)
	size += RoleMUS.Size(v.Role)
	size += ord.String.Size(v.Contents)
	size += timeMicroMUS.Size(v.Timestamp)
	size += timeMicroMUS.Size(v.InsertedAt)
	size += timeMicroMUS.Size(v.UpdatedAt)
	return
}

func (s dialogRecordMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = RoleMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = timeMicroMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = timeMicroMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = timeMicroMUS.Skip(bs[n:])
	n += n1
	return
}

type manifestMUS struct{}

func (s manifestMUS) Marshal(v Manifest, bs []byte) (n int) {
	n = ord.String.Marshal(v.EmbeddingModel, bs)
	n += varint.Int.Marshal(v.Documents, bs[n:])
	n += varint.Int.Marshal(v.Products, bs[n:])
	n += varint.Int.Marshal(v.Guides, bs[n:])
	n += timeMicroMUS.Marshal(v.IngestedAt, bs[n:])
	n += timeMicroMUS.Marshal(v.UpdatedAt, bs[n:])
	return
}

func (s manifestMUS) Unmarshal(bs []byte) (v Manifest, n int, err error) {
	v.EmbeddingModel, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Documents, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Products, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Guides, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.IngestedAt, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s manifestMUS) Size(v Manifest) (size int) {
	size = ord.String.Size(v.EmbeddingModel)
	size += varint.Int.Size(v.Documents)
	size += varint.Int.Size(v.Products)
	size += varint.Int.Size(v.Guides)
	size += timeMicroMUS.Size(v.IngestedAt)
	size += timeMicroMUS.Size(v.UpdatedAt)
	return
}

func (s manifestMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = timeMicroMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = timeMicroMUS.Skip(bs[n:])
	n += n1
	return
}
