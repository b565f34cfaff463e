package adhandler

import (
	"context"
	"testing"
	"time"
)

func TestSchemaBootstrap_Basic(t *testing.T) {
	s := newSchemaState(nil, NopLogger{})
	rows := []schemaRow{
		{name: "cn", syntax: "2.5.5.12", singleValued: true},
		{name: "member", syntax: "2.5.5.1", singleValued: false},
		{name: "isDisabled", syntax: "2.5.5.8", singleValued: true},
		{name: "accountExpires", syntax: "2.5.5.16", singleValued: true},
		{name: "objectGUID", syntax: "2.5.5.10", singleValued: true},
		{name: "objectSid", syntax: "2.5.5.17", singleValued: true},
		{name: "objectClass", syntax: "2.5.5.2", singleValued: false},
		{name: "attributeSyntax", syntax: "2.5.5.3", singleValued: true},
		{name: "lDAPDisplayName", syntax: "2.5.5.3", singleValued: true},
		{name: "distinguishedName", syntax: "2.5.5.1", singleValued: true},
	}

	err := s.ensure(context.Background(), func(ctx context.Context) ([]schemaRow, error) {
		return rows, nil
	})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !s.initialized {
		t.Fatal("expected initialized")
	}
	if s.schema["member"].SingleValued {
		t.Fatal("member should be multi-valued")
	}
	if s.schema["accountExpires"].Decoder == nil {
		t.Fatal("accountExpires should have the filetime decoder assigned")
	}
	if !s.boolAttrs["isDisabled"] {
		t.Fatal("isDisabled should be tracked as boolean")
	}
	if s.schema["objectGUID"].Decoder == nil {
		t.Fatal("objectGUID should have a decoder from the GUID name-sniff rule")
	}
}

func TestSchemaBootstrap_MissingMember(t *testing.T) {
	s := newSchemaState(nil, NopLogger{})
	rows := []schemaRow{{name: "cn", syntax: "2.5.5.12", singleValued: true}}
	err := s.ensure(context.Background(), func(ctx context.Context) ([]schemaRow, error) {
		return rows, nil
	})
	if err == nil {
		t.Fatal("expected error for missing member")
	}
	se, ok := err.(*SchemaError)
	if !ok || se.Attr != "member" {
		t.Fatalf("expected SchemaError naming member, got %v", err)
	}
}

func TestSchemaBootstrap_OverrideWins(t *testing.T) {
	s := newSchemaState(map[string]bool{"cn": true}, NopLogger{})
	rows := []schemaRow{
		{name: "cn", syntax: "2.5.5.12", singleValued: false}, // disagrees; override wins
		{name: "member", syntax: "2.5.5.1", singleValued: false},
	}
	err := s.ensure(context.Background(), func(ctx context.Context) ([]schemaRow, error) {
		return rows, nil
	})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !s.schema["cn"].SingleValued {
		t.Fatal("override should have won over the disagreeing bootstrap row")
	}
}

func TestSchemaBootstrap_DuplicateConflict(t *testing.T) {
	s := newSchemaState(nil, NopLogger{})
	rows := []schemaRow{
		{name: "cn", syntax: "2.5.5.12", singleValued: true},
		{name: "cn", syntax: "2.5.5.12", singleValued: false},
		{name: "member", syntax: "2.5.5.1", singleValued: false},
	}
	err := s.ensure(context.Background(), func(ctx context.Context) ([]schemaRow, error) {
		return rows, nil
	})
	if err == nil {
		t.Fatal("expected error for conflicting duplicate bootstrap rows")
	}
}

func TestSchemaBootstrap_Throttle(t *testing.T) {
	s := newSchemaState(nil, NopLogger{})
	calls := 0
	fn := func(ctx context.Context) ([]schemaRow, error) {
		calls++
		return nil, errorTxt("boom")
	}
	_ = s.ensure(context.Background(), fn)
	_ = s.ensure(context.Background(), fn)
	if calls != 1 {
		t.Fatalf("expected exactly one bootstrap attempt within the throttle window, got %d", calls)
	}

	s.lastAttempt = time.Now().Add(-2 * bootstrapThrottle)
	_ = s.ensure(context.Background(), fn)
	if calls != 2 {
		t.Fatalf("expected a retry once the throttle window elapsed, got %d calls", calls)
	}
}
